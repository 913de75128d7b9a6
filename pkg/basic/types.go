package basic

// User-defined TYPE support: TYPE...END TYPE declarations and field
// access on their instances.

func (it *Interp) declareType(name string, fields []UserTypeField) {
	normalized := make([]UserTypeField, len(fields))
	for i, f := range fields {
		f.Name = normName(f.Name)
		normalized[i] = f
	}
	it.userTypes[normName(name)] = &UserType{Name: normName(name), Fields: normalized}
}

func (it *Interp) newTypeInstance(typeName string) (*TypeInstance, error) {
	ut, ok := it.userTypes[normName(typeName)]
	if !ok {
		return nil, NewRuntimeError(ErrCodeTypeMismatch, "Type not defined", it.currentLine())
	}
	return NewTypeInstance(ut), nil
}

// fieldAccess resolves a.b.c chains, recursing through nested
// TypeInstance values.
func (it *Interp) fieldAccess(obj Value, field string) (Value, error) {
	if obj.TypeRef == nil {
		return Value{}, NewRuntimeError(ErrCodeTypeMismatch, "Type mismatch", it.currentLine())
	}
	v, ok := obj.TypeRef.Fields[normName(field)]
	if !ok {
		// declareType and fieldSet store field names upper-cased; the
		// raw-name lookup is a second attempt before failing.
		v, ok = obj.TypeRef.Fields[field]
		if !ok {
			return Value{}, NewRuntimeError(ErrCodeTypeMismatch, "Field not found", it.currentLine())
		}
	}
	return v, nil
}

func (it *Interp) fieldSet(obj Value, field string, val Value) error {
	if obj.TypeRef == nil {
		return NewRuntimeError(ErrCodeTypeMismatch, "Type mismatch", it.currentLine())
	}
	obj.TypeRef.Fields[normName(field)] = val
	return nil
}
