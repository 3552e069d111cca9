package ir

// Condition represents a node of a parsed filter expression.
//
// This is a sealed interface - only types in this package implement it.
// A Condition tree is built once by the parser and is read-only thereafter,
// so it may be evaluated concurrently against any number of records.
//
// Condition types:
//   - Leaf: field operator literal
//   - And, Or: binary connectives (equal precedence, left-associative)
//   - Not: negation of the following term
//   - Group: a parenthesised expression
type Condition interface {
	conditionNode() // Marker method - seals interface to this package

	// String renders the condition as query text that parses back to
	// an equal tree.
	String() string
}

// Leaf compares one field against one literal.
//
// Field is the descriptor resolved at parse time, so evaluation never
// consults the registry again. Column is where the field name starts.
type Leaf struct {
	Field    FieldDescriptor
	Operator Operator
	Literal  Literal
	Column   int
}

// Mode returns the comparison mode selected by the field descriptor.
func (l Leaf) Mode() Mode {
	return l.Field.ModeFor(l.Operator)
}

// And is true when both sides are true. Right is not evaluated when Left is false.
type And struct {
	Left  Condition
	Right Condition
}

// Or is true when either side is true. Right is not evaluated when Left is true.
type Or struct {
	Left  Condition
	Right Condition
}

// Not negates Inner.
type Not struct {
	Inner Condition
}

// Group is a parenthesised expression; it evaluates to Inner.
type Group struct {
	Inner Condition
}

func (Leaf) conditionNode()  {}
func (And) conditionNode()   {}
func (Or) conditionNode()    {}
func (Not) conditionNode()   {}
func (Group) conditionNode() {}

func (l Leaf) String() string {
	return l.Field.Name + " " + l.Operator.String() + " " + l.Literal.String()
}

func (a And) String() string   { return a.Left.String() + " AND " + a.Right.String() }
func (o Or) String() string    { return o.Left.String() + " OR " + o.Right.String() }
func (n Not) String() string   { return "NOT " + n.Inner.String() }
func (g Group) String() string { return "(" + g.Inner.String() + ")" }

// Walk calls fn for every node of the tree in depth-first, left-to-right
// order. Walking stops early when fn returns false.
func Walk(c Condition, fn func(Condition) bool) bool {
	if c == nil {
		return true
	}
	if !fn(c) {
		return false
	}
	switch n := c.(type) {
	case And:
		return Walk(n.Left, fn) && Walk(n.Right, fn)
	case Or:
		return Walk(n.Left, fn) && Walk(n.Right, fn)
	case Not:
		return Walk(n.Inner, fn)
	case Group:
		return Walk(n.Inner, fn)
	}
	return true
}

// Leaves returns every Leaf of the tree in source order.
func Leaves(c Condition) []Leaf {
	var leaves []Leaf
	Walk(c, func(n Condition) bool {
		if leaf, ok := n.(Leaf); ok {
			leaves = append(leaves, leaf)
		}
		return true
	})
	return leaves
}
