package entity

// Mixin is a named, state-agnostic rule table attachable to multiple
// entities, with a priority byte controlling fall-through order among
// several attached mixins (lower priority value is consulted first,
// matching the middleware chain's ascending-priority convention).
type Mixin struct {
	Name     string
	Priority uint8
	Rules    []Rule
}

// mixinSlot is one entry in an entity's bounded mixin attachment
// array.
type mixinSlot struct {
	mixin *Mixin
	inUse bool
}
