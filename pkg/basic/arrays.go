package basic

// Array handling: N-dimensional arrays with flat row-major storage.

func (it *Interp) dimArray(name string, dims []int, kind string) {
	it.arrays[normName(name)] = NewArray(dims, kind)
}

// autoCreateArray gives an undimensioned array bounds 0..10 on each
// referenced axis. First access to an undimensioned array is a
// compatibility contract, not an error.
func (it *Interp) autoCreateArray(name string, axisCount int) *Array {
	dims := make([]int, axisCount)
	for i := range dims {
		dims[i] = 10
	}
	arr := NewArray(dims, "")
	it.arrays[normName(name)] = arr
	return arr
}

func (it *Interp) getOrAutoArray(name string, indices []int) (*Array, error) {
	arr, ok := it.arrays[normName(name)]
	if !ok {
		arr = it.autoCreateArray(name, len(indices))
	}
	return arr, nil
}

func (it *Interp) arrayGet(name string, indices []int) (Value, error) {
	arr, err := it.getOrAutoArray(name, indices)
	if err != nil {
		return Value{}, err
	}
	idx, err := arr.FlatIndex(indices)
	if err != nil {
		return Value{}, NewRuntimeError(ErrCodeSubscriptOutOfRange, "Subscript out of range", it.currentLine())
	}
	v := arr.Elements[idx]
	if v == (Value{}) && !v.IsNumeric && v.Str == "" {
		return sigilDefault(name), nil
	}
	return v, nil
}

func (it *Interp) arraySet(name string, indices []int, val Value) error {
	arr, err := it.getOrAutoArray(name, indices)
	if err != nil {
		return err
	}
	idx, err := arr.FlatIndex(indices)
	if err != nil {
		return NewRuntimeError(ErrCodeSubscriptOutOfRange, "Subscript out of range", it.currentLine())
	}
	arr.Elements[idx] = val
	return nil
}

// redimArray reinitializes (or, with Preserve, retains overlapping
// indices of) an array's storage.
func (it *Interp) redimArray(name string, dims []int, kind string, preserve bool) {
	n := normName(name)
	if !preserve {
		it.arrays[n] = NewArray(dims, kind)
		return
	}
	old, ok := it.arrays[n]
	newArr := NewArray(dims, kind)
	if ok {
		copyOverlap(old, newArr)
	}
	it.arrays[n] = newArr
}

func copyOverlap(old, new *Array) {
	minDims := len(old.Dims)
	if len(new.Dims) < minDims {
		minDims = len(new.Dims)
	}
	// Walk every index of the old array; copy across when every axis
	// still fits in the new bounds.
	idxs := make([]int, len(old.Dims))
	var walk func(axis int)
	walk = func(axis int) {
		if axis == len(old.Dims) {
			fits := true
			for i := 0; i < minDims; i++ {
				if idxs[i] > new.Dims[i] {
					fits = false
					break
				}
			}
			if !fits {
				return
			}
			oldIdx, err1 := old.FlatIndex(idxs)
			newIdx, err2 := new.FlatIndex(idxs[:len(new.Dims)])
			if err1 == nil && err2 == nil {
				new.Elements[newIdx] = old.Elements[oldIdx]
			}
			return
		}
		for i := 0; i <= old.Dims[axis]; i++ {
			idxs[axis] = i
			walk(axis + 1)
		}
	}
	walk(0)
}

func (it *Interp) evalDimEntry(e DimEntry) ([]int, error) {
	dims := make([]int, len(e.Dims))
	for i, de := range e.Dims {
		v, err := it.evalExpr(de)
		if err != nil {
			return nil, err
		}
		n, err := toNumber(it, v)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, NewRuntimeError(ErrCodeSubscriptOutOfRange, "Subscript out of range", it.currentLine())
		}
		dims[i] = int(n)
	}
	return dims, nil
}

func (it *Interp) execDim(st *DimStmt) error {
	for _, e := range st.Entries {
		dims, err := it.evalDimEntry(e)
		if err != nil {
			return err
		}
		if len(dims) == 0 {
			// DIM a AS t: a scalar TYPE instance, or a typed scalar
			if _, ok := it.userTypes[normName(e.AsType)]; ok {
				inst, err := it.newTypeInstance(e.AsType)
				if err != nil {
					return err
				}
				it.variables[normName(e.Name)] = Value{TypeRef: inst}
				continue
			}
			it.variables[normName(e.Name)] = sigilDefault(normName(e.Name))
			continue
		}
		kind := ""
		if _, ok := it.userTypes[normName(e.AsType)]; ok {
			kind = normName(e.AsType)
		}
		it.dimArray(normName(e.Name), dims, kind)
		if kind != "" {
			arr := it.arrays[normName(e.Name)]
			for i := range arr.Elements {
				inst, err := it.newTypeInstance(kind)
				if err != nil {
					return err
				}
				arr.Elements[i] = Value{TypeRef: inst}
			}
		}
	}
	return nil
}

func (it *Interp) execRedim(st *RedimStmt) error {
	for _, e := range st.Entries {
		dims, err := it.evalDimEntry(e)
		if err != nil {
			return err
		}
		kind := ""
		if _, ok := it.userTypes[normName(e.AsType)]; ok {
			kind = normName(e.AsType)
		}
		it.redimArray(normName(e.Name), dims, kind, st.Preserve)
	}
	return nil
}
