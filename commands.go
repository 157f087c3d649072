package rubble

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// DestroyBlock queues a block for destruction in the PostUpdate stage of the
// current tick.
func (cmd *Commands) DestroyBlock(index int) {
	cmd.app.pendingDestroys = append(cmd.app.pendingDestroys, index)
}

func (cmd *Commands) ClearFragments() {
	cmd.app.pendingClear = true
}

func (cmd *Commands) SetEternal(eternal bool) {
	cmd.app.pendingEternal = &eternal
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

func (cmd *Commands) takeDestroys() []int {
	out := cmd.app.pendingDestroys
	cmd.app.pendingDestroys = nil
	return out
}
