// Package command implements the do/redo journal every model mutation
// passes through, plus the concrete commands that mutate the musical
// model.
package command

const maxEntries = 100

// Command is the trait every mutation implements: execute applies the
// change (capturing whatever it needs to invert, lazily, on first run);
// undo reverses it using that captured state.
type Command interface {
	Execute()
	Undo()
	Description() string
}

// BatchCommand wraps a list of commands captured during a Journal.Batch
// call so they undo/redo as a single unit, in reverse order for undo.
type BatchCommand struct {
	Desc     string
	Children []Command
}

func (b *BatchCommand) Execute() {
	for _, c := range b.Children {
		c.Execute()
	}
}

func (b *BatchCommand) Undo() {
	for i := len(b.Children) - 1; i >= 0; i-- {
		b.Children[i].Undo()
	}
}

func (b *BatchCommand) Description() string { return b.Desc }

// Result is returned by Undo/Redo; Success is false when the
// corresponding stack was empty. It carries no context or cursor
// position, so callers cannot restore the cursor from it.
type Result struct {
	Success bool
}

// Journal keeps bounded do/redo stacks and the single-unit batching
// behavior described by the command journal's semantics.
type Journal struct {
	do        []Command
	redoStack []Command
	recording *[]Command
}

func NewJournal() *Journal {
	return &Journal{}
}

// Execute runs cmd.Execute(), pushes it to the do-stack (or the active
// batch capture list), and clears the redo-stack.
func (j *Journal) Execute(c Command) {
	c.Execute()
	if j.recording != nil {
		*j.recording = append(*j.recording, c)
		return
	}
	j.pushDo(c)
	j.redoStack = nil
}

// Batch runs f, during which every Journal.Execute call is captured into
// a list instead of hitting the do-stack directly; at the end, a single
// BatchCommand wrapping that list is pushed.
func (j *Journal) Batch(desc string, f func()) {
	var captured []Command
	prev := j.recording
	j.recording = &captured
	f()
	j.recording = prev

	if len(captured) == 0 {
		return
	}
	if j.recording != nil {
		*j.recording = append(*j.recording, &BatchCommand{Desc: desc, Children: captured})
		return
	}
	j.pushDo(&BatchCommand{Desc: desc, Children: captured})
	j.redoStack = nil
}

func (j *Journal) pushDo(c Command) {
	j.do = append(j.do, c)
	if len(j.do) > maxEntries {
		j.do = j.do[len(j.do)-maxEntries:]
	}
}

func (j *Journal) pushRedo(c Command) {
	j.redoStack = append(j.redoStack, c)
	if len(j.redoStack) > maxEntries {
		j.redoStack = j.redoStack[len(j.redoStack)-maxEntries:]
	}
}

func (j *Journal) Undo() Result {
	if len(j.do) == 0 {
		return Result{Success: false}
	}
	c := j.do[len(j.do)-1]
	j.do = j.do[:len(j.do)-1]
	c.Undo()
	j.pushRedo(c)
	return Result{Success: true}
}

func (j *Journal) Redo() Result {
	if len(j.redoStack) == 0 {
		return Result{Success: false}
	}
	c := j.redoStack[len(j.redoStack)-1]
	j.redoStack = j.redoStack[:len(j.redoStack)-1]
	c.Execute()
	j.pushDo(c)
	return Result{Success: true}
}

func (j *Journal) CanUndo() bool { return len(j.do) > 0 }
func (j *Journal) CanRedo() bool { return len(j.redoStack) > 0 }
