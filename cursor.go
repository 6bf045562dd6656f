package cdconfig

type frameKind int

const (
	// frameStruct iterates the fields of one scope.
	frameStruct frameKind = iota
	// frameItem is one bound key together with its element list.
	frameItem
	// frameSeq iterates a key's element list as a sequence.
	frameSeq
)

// frame is one level of traversal state. Which fields are meaningful
// depends on kind; see the constants above.
type frame struct {
	kind  frameKind
	scope scope     // frameStruct
	key   string    // frameItem
	elems []element // frameItem, frameSeq
	index int       // frameSeq
}

// cursor is the traversal stack of an in-flight decode. It starts with a
// single struct frame for the document root and must be back at exactly
// that frame when the decode completes.
//
// Frames are pushed only when entering one more nesting level; advancing
// among siblings at the same depth replaces the top frame in place. Every
// push is matched by exactly one pop, issued by the accessor that exhausts
// the frame.
type cursor struct {
	frames []frame
}

func newCursor(root scope) cursor {
	return cursor{frames: []frame{{kind: frameStruct, scope: root}}}
}

func (c *cursor) depth() int {
	return len(c.frames)
}

// current returns the top frame. The pointer is only valid until the next
// stack mutation.
func (c *cursor) current() (*frame, error) {
	if len(c.frames) == 0 {
		return nil, ErrNoFrames
	}

	return &c.frames[len(c.frames)-1], nil
}

func (c *cursor) push(f frame) {
	c.frames = append(c.frames, f)
}

func (c *cursor) pop() {
	if len(c.frames) > 0 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

// parentAt returns the frame that drives the binding of position pos: the
// top frame for the first position, the one below it afterwards, since the
// previous position's frame still sits on top and is about to be replaced.
func (c *cursor) parentAt(pos int) (*frame, error) {
	at := len(c.frames) - 1
	if pos > 0 {
		at--
	}

	if at < 0 {
		return nil, ErrNoFrames
	}

	return &c.frames[at], nil
}

// bindField positions the cursor on a struct frame's field at pos. The
// scope's first field pushes a new item frame; later fields replace the
// previous field's frame in place so iterating siblings does not grow the
// stack.
func (c *cursor) bindField(pos int) error {
	parent, err := c.parentAt(pos)
	if err != nil {
		return err
	}

	if parent.kind != frameStruct {
		return ErrExpectStruct
	}

	entry := parent.scope[pos]
	next := frame{kind: frameItem, key: entry.key, elems: entry.elems}

	if pos == 0 {
		c.push(next)
	} else {
		c.frames[len(c.frames)-1] = next
	}

	return nil
}

// bindElement positions the cursor on an item frame's element at pos,
// viewing the key's occurrences as a sequence. Same push-vs-replace rule as
// bindField.
func (c *cursor) bindElement(pos int) error {
	parent, err := c.parentAt(pos)
	if err != nil {
		return err
	}

	if parent.kind != frameItem {
		return ErrExpectKey
	}

	next := frame{kind: frameSeq, elems: parent.elems, index: pos}

	if pos == 0 {
		c.push(next)
	} else {
		c.frames[len(c.frames)-1] = next
	}

	return nil
}
