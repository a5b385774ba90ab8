package binschema

// The coder state machine is shared by Encoder and Decoder. It holds the
// ancestor stack of schema nodes from the root down to the node being
// coded, validates every streaming API call against the schema, and
// resolves recurse back-references at push time. It never touches the
// byte stream.

type frameState uint8

const (
	// The frame's element has not started being coded.
	stateNeed frameState = iota
	// An inner element is being coded; finishing it finishes this frame.
	stateAutoFinish
	// A seq is being coded; need holds the total count, next the index.
	stateSeq
	// A tuple is being coded; next holds the element index.
	stateTuple
	// A struct is being coded; next holds the field index.
	stateStruct
	// An enum is being coded and its variant has not been selected.
	stateEnum
)

type frame struct {
	schema *Schema
	state  frameState
	need   uint64
	next   uint64
}

type coderState struct {
	stack []frame
	err   error // first fatal error; all later calls return it
}

func newCoderState(schema *Schema) *coderState {
	c := &coderState{stack: make([]frame, 0, 8)}
	if err := c.pushNeed(schema); err != nil {
		c.err = err
	}
	return c
}

// fail records err as the coder's terminal state.
func (c *coderState) fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return err
}

// pushNeed resolves any chain of recurse nodes against the ancestor
// stack, then pushes the resolved schema. The stack holds exactly the
// strict ancestors of the node being pushed, so a recurse of level n
// resolves n entries down from the top.
func (c *coderState) pushNeed(s *Schema) error {
	i := len(c.stack)
	for s.Kind == SchemaRecurse {
		if s.Level == 0 {
			return c.fail(errf(ErrInvalidSchema, "recurse of level 0"))
		}
		if s.Level > uint64(i) {
			return c.fail(errf(ErrInvalidSchema,
				"recurse level %d exceeds ancestor depth %d", s.Level, i))
		}
		i -= int(s.Level)
		s = c.stack[i].schema
	}
	c.stack = append(c.stack, frame{schema: s, state: stateNeed})
	return nil
}

// pop removes the finished top frame, then unwinds any auto-finishing
// ancestors (option some, enum variant).
func (c *coderState) pop() {
	c.stack = c.stack[:len(c.stack)-1]
	for len(c.stack) > 0 && c.stack[len(c.stack)-1].state == stateAutoFinish {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

func (c *coderState) top() (*frame, error) {
	if c.err != nil {
		return nil, c.err
	}
	if len(c.stack) == 0 {
		return nil, c.fail(errf(ErrUsage, "message already finished"))
	}
	return &c.stack[len(c.stack)-1], nil
}

// mismatch builds the error for an API call that does not match the top
// frame: a schema violation when a fresh element was needed, an
// out-of-order call otherwise.
func (c *coderState) mismatch(f *frame, got string) error {
	switch f.state {
	case stateNeed:
		return c.fail(errf(ErrNonConforming, "need %s, got %s", f.schema, got))
	case stateSeq:
		return c.fail(errf(ErrUsage, "need seq elem or finish, got %s", got))
	case stateTuple:
		return c.fail(errf(ErrUsage, "need tuple elem or finish, got %s", got))
	case stateStruct:
		return c.fail(errf(ErrUsage, "need struct field or finish, got %s", got))
	case stateEnum:
		return c.fail(errf(ErrUsage, "need enum variant, got %s", got))
	default:
		return c.fail(errf(ErrUsage, "got %s mid-element", got))
	}
}

// expect returns the resolved schema of the element that must be coded
// next. got names the caller's intent for error messages.
func (c *coderState) expect(got string) (*Schema, error) {
	f, err := c.top()
	if err != nil {
		return nil, err
	}
	if f.state != stateNeed {
		return nil, c.mismatch(f, got)
	}
	return f.schema, nil
}

func (c *coderState) codeScalar(t ScalarType) error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateNeed || f.schema.Kind != SchemaScalar || f.schema.Scalar != t {
		return c.mismatch(f, t.String())
	}
	c.pop()
	return nil
}

// codeLeaf handles the non-scalar leaves: str, bytes, unit.
func (c *coderState) codeLeaf(kind SchemaKind) error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateNeed || f.schema.Kind != kind {
		return c.mismatch(f, kind.String())
	}
	c.pop()
	return nil
}

func (c *coderState) codeNone() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateNeed || f.schema.Kind != SchemaOption {
		return c.mismatch(f, "none")
	}
	c.pop()
	return nil
}

func (c *coderState) beginSome() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateNeed || f.schema.Kind != SchemaOption {
		return c.mismatch(f, "some")
	}
	f.state = stateAutoFinish
	return c.pushNeed(f.schema.Inner)
}

// beginSeq starts coding a seq of exactly length elements. For a
// fixed-length schema the declared length must match.
func (c *coderState) beginSeq(length uint64) error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateNeed || f.schema.Kind != SchemaSeq {
		return c.mismatch(f, "seq")
	}
	if f.schema.Len != nil && *f.schema.Len != length {
		return c.fail(errf(ErrNonConforming,
			"need seq len %d, got %d", *f.schema.Len, length))
	}
	f.state = stateSeq
	f.need = length
	f.next = 0
	return nil
}

func (c *coderState) beginSeqElem() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateSeq {
		return c.mismatch(f, "seq elem")
	}
	if f.next >= f.need {
		return c.fail(errf(ErrNonConforming,
			"seq elem %d past promised len %d", f.next, f.need))
	}
	f.next++
	return c.pushNeed(f.schema.Inner)
}

func (c *coderState) finishSeq() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateSeq {
		return c.mismatch(f, "seq finish")
	}
	if f.next != f.need {
		return c.fail(errf(ErrNonConforming,
			"finish seq of len %d after %d elems", f.need, f.next))
	}
	c.pop()
	return nil
}

func (c *coderState) beginTuple() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateNeed || f.schema.Kind != SchemaTuple {
		return c.mismatch(f, "tuple")
	}
	f.state = stateTuple
	f.next = 0
	return nil
}

func (c *coderState) beginTupleElem() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateTuple {
		return c.mismatch(f, "tuple elem")
	}
	if f.next >= uint64(len(f.schema.Inners)) {
		return c.fail(errf(ErrNonConforming,
			"tuple elem %d past arity %d", f.next, len(f.schema.Inners)))
	}
	inner := f.schema.Inners[f.next]
	f.next++
	return c.pushNeed(inner)
}

func (c *coderState) finishTuple() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateTuple {
		return c.mismatch(f, "tuple finish")
	}
	if f.next != uint64(len(f.schema.Inners)) {
		return c.fail(errf(ErrNonConforming,
			"finish tuple of arity %d after %d elems", len(f.schema.Inners), f.next))
	}
	c.pop()
	return nil
}

func (c *coderState) beginStruct() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateNeed || f.schema.Kind != SchemaStruct {
		return c.mismatch(f, "struct")
	}
	f.state = stateStruct
	f.next = 0
	return nil
}

func (c *coderState) beginField(name string) error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateStruct {
		return c.mismatch(f, "struct field")
	}
	if f.next >= uint64(len(f.schema.Fields)) {
		return c.fail(errf(ErrNonConforming,
			"field %d past struct arity %d", f.next, len(f.schema.Fields)))
	}
	field := f.schema.Fields[f.next]
	if field.Name != name {
		return c.fail(errf(ErrNonConforming,
			"need field %q, got field %q", field.Name, name))
	}
	f.next++
	return c.pushNeed(field.Inner)
}

func (c *coderState) finishStruct() error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateStruct {
		return c.mismatch(f, "struct finish")
	}
	if f.next != uint64(len(f.schema.Fields)) {
		return c.fail(errf(ErrNonConforming,
			"finish struct of arity %d after %d fields", len(f.schema.Fields), f.next))
	}
	c.pop()
	return nil
}

// beginEnum returns the variant count. A zero-variant enum holds no
// values, so coding one is a schema-level failure.
func (c *coderState) beginEnum() (int, error) {
	f, err := c.top()
	if err != nil {
		return 0, err
	}
	if f.state != stateNeed || f.schema.Kind != SchemaEnum {
		return 0, c.mismatch(f, "enum")
	}
	if len(f.schema.Variants) == 0 {
		return 0, c.fail(errf(ErrInvalidSchema, "no value exists under a zero-variant enum"))
	}
	f.state = stateEnum
	return len(f.schema.Variants), nil
}

// beginEnumVariant selects the variant at ord. An empty name skips the
// name check (the decoder takes the name from the schema).
func (c *coderState) beginEnumVariant(ord int, name string) error {
	f, err := c.top()
	if err != nil {
		return err
	}
	if f.state != stateEnum {
		return c.mismatch(f, "enum variant")
	}
	if ord < 0 || ord >= len(f.schema.Variants) {
		return c.fail(errf(ErrNonConforming,
			"variant ordinal %d out of range for %d variants", ord, len(f.schema.Variants)))
	}
	variant := f.schema.Variants[ord]
	if name != "" && variant.Name != name {
		return c.fail(errf(ErrNonConforming,
			"variant %d is named %q, got %q", ord, variant.Name, name))
	}
	f.state = stateAutoFinish
	return c.pushNeed(variant.Inner)
}

func (c *coderState) isFinished() bool {
	return c.err == nil && len(c.stack) == 0
}

func (c *coderState) finishOrErr() error {
	if c.err != nil {
		return c.err
	}
	if len(c.stack) != 0 {
		return c.fail(errf(ErrUsage, "message not finished"))
	}
	return nil
}
