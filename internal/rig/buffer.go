package rig

// variableState is the detached snapshot of one variable held by a copy
// buffer.
type variableState struct {
	name    string
	kind    VariableKind
	rest    float64
	pose    float64
	targets []targetRefState
}

type targetRefState struct {
	idType   IDType
	object   string
	bone     string
	dataPath string
	shapeKey string
	channel  TransformChannel
	space    TransformSpace
	rotation RotationMode
}

// VariableBuffer carries variable snapshots between drivers. The zero
// value is an empty buffer.
type VariableBuffer struct {
	items []variableState
}

// Len reports how many variables the buffer holds.
func (b *VariableBuffer) Len() int { return len(b.items) }

// Copy replaces the buffer contents with snapshots of the driver's
// variables.
func (b *VariableBuffer) Copy(d *Driver) {
	b.items = b.items[:0]
	for _, v := range d.variables {
		state := variableState{
			name: v.name,
			kind: v.kind,
			rest: v.rest,
			pose: v.pose,
		}
		for _, r := range v.targets {
			state.targets = append(state.targets, targetRefState{
				idType:   r.idType,
				object:   r.object,
				bone:     r.bone,
				dataPath: r.dataPath,
				shapeKey: r.shapeKey,
				channel:  r.channel,
				space:    r.space,
				rotation: r.rotation,
			})
		}
		b.items = append(b.items, state)
	}
}

// Paste appends the buffered variables to the driver and re-synthesizes
// it once. Pasting an empty buffer is an error and leaves the driver
// unchanged.
func (b *VariableBuffer) Paste(d *Driver) error {
	if len(b.items) == 0 {
		return ErrEmptyBuffer
	}
	for _, state := range b.items {
		v := &Variable{
			driver: d,
			name:   state.name,
			kind:   state.kind,
			rest:   state.rest,
			pose:   state.pose,
		}
		for _, rs := range state.targets {
			v.targets = append(v.targets, &TargetRef{
				variable: v,
				idType:   rs.idType,
				object:   rs.object,
				bone:     rs.bone,
				dataPath: rs.dataPath,
				shapeKey: rs.shapeKey,
				channel:  rs.channel,
				space:    rs.space,
				rotation: rs.rotation,
			})
		}
		v.syncTargets()
		d.variables = append(d.variables, v)
	}
	d.Update()
	return nil
}
