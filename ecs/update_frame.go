package ecs

type UpdateFrame struct {
	DeltaTime   float64
	Commands    *Commands
	Coordinator *Coordinator
}

func newUpdateFrame(dt float64, c *Coordinator) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime:   dt,
		Commands:    newCommands(),
		Coordinator: c,
	}
}
