package wang

// Constraint pairs a desired id with a mask. A slot is constrained when
// its mask nibble is non-zero; the desired color of any other slot is only
// a preference.
type Constraint struct {
	Desired WangID `json:"desired"`
	Mask    WangID `json:"mask"`
}

// Constrain returns a copy of c with slot i required to be color.
func (c Constraint) Constrain(i, color int) Constraint {
	c.Desired = c.Desired.WithIndexColor(i, color)
	c.Mask = c.Mask.WithIndexColor(i, MaxColor)
	return c
}

// Prefer returns a copy of c with the desired color of slot i set,
// leaving the mask untouched.
func (c Constraint) Prefer(i, color int) Constraint {
	c.Desired = c.Desired.WithIndexColor(i, color)
	return c
}

// IsConstrained reports whether slot i is masked.
func (c Constraint) IsConstrained(i int) bool {
	return c.Mask.IndexColor(i) != 0
}

// NormalizedMask returns the mask with every non-zero nibble widened to 0xf.
func (c Constraint) NormalizedMask() WangID {
	return c.Mask.Mask()
}

// Masked returns the desired id with every unconstrained slot cleared.
func (c Constraint) Masked() WangID {
	return c.Desired & c.NormalizedMask()
}

// Matches reports whether id agrees with c on every constrained slot.
func (c Constraint) Matches(id WangID) bool {
	mask := c.NormalizedMask()
	return id&mask == c.Desired&mask
}
