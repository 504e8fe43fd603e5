package render

import (
	"github.com/charmbracelet/harmonica"
)

// Input is the movement a user is asking for this frame. Each field is an
// intent in [-1, 1]; zero means released.
type Input struct {
	Forward float64 // +1 moves along the view direction
	Right   float64
	Up      float64
	Yaw     float64 // +1 turns left
	Pitch   float64 // +1 looks up
}

// axis smooths one velocity toward a target with a critically damped spring.
type axis struct {
	velocity float64
	accel    float64
	spring   harmonica.Spring
}

func (a *axis) update(target float64) float64 {
	a.velocity, a.accel = a.spring.Update(a.velocity, a.accel, target)
	return a.velocity
}

// CameraController moves a Camera from per-frame Input. Velocities ease in
// and out through harmonica springs stepped once per Update, while the
// distance covered is integrated over the elapsed time passed to Update.
type CameraController struct {
	Camera    *Camera
	MoveSpeed float64 // World units per second at full intent
	TurnSpeed float64 // Radians per second at full intent

	forward, right, up, yaw, pitch axis
}

// NewCameraController creates a controller for cam whose springs step at
// fps frames per second. A non-positive fps falls back to 60.
func NewCameraController(cam *Camera, fps int) *CameraController {
	if fps <= 0 {
		fps = 60
	}
	newAxis := func() axis {
		// Frequency 6 settles in a fraction of a second, damping 1 never overshoots.
		return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
	}
	return &CameraController{
		Camera:    cam,
		MoveSpeed: 3,
		TurnSpeed: 1.5,
		forward:   newAxis(),
		right:     newAxis(),
		up:        newAxis(),
		yaw:       newAxis(),
		pitch:     newAxis(),
	}
}

// Update advances the camera by dt seconds of motion toward the input.
func (c *CameraController) Update(dt float64, in Input) {
	move := c.MoveSpeed * dt
	turn := c.TurnSpeed * dt

	c.Camera.MoveForward(c.forward.update(in.Forward) * move)
	c.Camera.MoveRight(c.right.update(in.Right) * move)
	c.Camera.MoveUp(c.up.update(in.Up) * move)
	c.Camera.Rotate(c.pitch.update(in.Pitch)*turn, c.yaw.update(in.Yaw)*turn, 0)
}

// Moving reports whether any axis still has noticeable velocity.
func (c *CameraController) Moving() bool {
	const rest = 1e-3
	for _, a := range []*axis{&c.forward, &c.right, &c.up, &c.yaw, &c.pitch} {
		if a.velocity > rest || a.velocity < -rest {
			return true
		}
	}
	return false
}
