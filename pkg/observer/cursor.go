package observer

// cursor is a read position clamped to [min, max].
type cursor struct {
	position int
	min      int
	max      int
}

func (c *cursor) setRange(min int, max int) {
	c.min = min
	c.max = max
	if c.max < c.min {
		c.max = c.min
	}
	c.adjustPosition()
}

// setPosition clamps and reports whether the position changed.
func (c *cursor) setPosition(position int) bool {
	previous := c.position
	c.position = position
	c.adjustPosition()
	return c.position != previous
}

func (c *cursor) adjustPosition() {
	if c.position > c.max {
		c.position = c.max
	}
	if c.position < c.min {
		c.position = c.min
	}
}

func (c *cursor) increment() bool {
	return c.setPosition(c.position + 1)
}

func (c *cursor) decrement() bool {
	return c.setPosition(c.position - 1)
}
