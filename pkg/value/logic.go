package value

import "fmt"

// And, Or, Not, and Xor implement Cypher's three-valued logic. A NULL
// operand is represented as ok=false in the two-return shape Equals uses;
// the special cases below are the ones where the *other* operand still
// determines a known result despite a NULL input (NULL AND false = false,
// NULL OR true = true) — everything else propagates NULL.
func And(a, b Value) Value {
	af, aKnown := boolOrNull(a)
	bf, bKnown := boolOrNull(b)
	if aKnown && !af {
		return Bool(false)
	}
	if bKnown && !bf {
		return Bool(false)
	}
	if !aKnown || !bKnown {
		return Null
	}
	return Bool(af && bf)
}

func Or(a, b Value) Value {
	af, aKnown := boolOrNull(a)
	bf, bKnown := boolOrNull(b)
	if aKnown && af {
		return Bool(true)
	}
	if bKnown && bf {
		return Bool(true)
	}
	if !aKnown || !bKnown {
		return Null
	}
	return Bool(af || bf)
}

// Xor has no short-circuit special case: NULL XOR anything is NULL.
func Xor(a, b Value) Value {
	af, aKnown := boolOrNull(a)
	bf, bKnown := boolOrNull(b)
	if !aKnown || !bKnown {
		return Null
	}
	return Bool(af != bf)
}

func Not(a Value) (Value, error) {
	if a.Kind() == KindNull {
		return Null, nil
	}
	if a.Kind() != KindBool {
		return Null, fmt.Errorf("%w: cannot negate %s", ErrTypeMismatch, a.Kind())
	}
	return Bool(!a.AsBool()), nil
}

func boolOrNull(v Value) (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.AsBool(), true
}

// ListContains implements the IN operator: true if any element equals
// value; false if none do and the list holds no NULL; NULL if no match is
// found but a NULL element is present, or if the list or value itself is
// NULL.
func ListContains(list, needle Value) Value {
	if list.Kind() == KindNull || needle.Kind() == KindNull {
		return Null
	}
	if list.Kind() != KindList {
		return Null
	}
	sawNull := false
	for _, item := range list.AsList() {
		if item.Kind() == KindNull {
			sawNull = true
			continue
		}
		eq, ok := Equals(item, needle)
		if ok && eq {
			return Bool(true)
		}
	}
	if sawNull {
		return Null
	}
	return Bool(false)
}
