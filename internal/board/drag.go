package board

// Drag tracks one drag gesture: the grabbed task and the row it is currently over.
type Drag struct {
	active string
	over   string
}

func (d *Drag) Begin(id string) {
	d.active = id
	d.over = id
}

func (d *Drag) Over(id string) {
	if d.active == "" {
		return
	}
	d.over = id
}

func (d *Drag) Active() string { return d.active }

func (d *Drag) Target() string { return d.over }

func (d *Drag) Dragging() bool { return d.active != "" }

// Drop ends the gesture and returns what was dropped where.
func (d *Drag) Drop() (active, over string) {
	active, over = d.active, d.over
	d.active, d.over = "", ""
	return active, over
}

func (d *Drag) Cancel() {
	d.active, d.over = "", ""
}

// DragHandle is the capability a row renderer gets from its parent: it can ask
// whether it is the grabbed row or the current drop target, and start a grab.
type DragHandle interface {
	BeginDrag(id string) bool
	DraggingID() string
	DropTargetID() string
}
