package basic

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileHandle is one open data file bound to a small integer number:
// sequential modes carry a buffered reader or writer, random mode a
// record buffer with FIELD/LSET/RSET projections.
type FileHandle struct {
	Mode      string // Input|Output|Append|Random
	Path      string
	file      *os.File
	reader    *bufio.Reader
	writer    *bufio.Writer
	RecordLen int
	RecordBuf []byte
	Fields    []FieldBinding
}

// FieldBinding is one resolved FIELD projection: a fixed-width slice of
// the record buffer mirrored into a named variable.
type FieldBinding struct {
	Offset int
	Width  int
	Var    string
}

func OpenFile(path, mode string, recLen int) (*FileHandle, error) {
	fh := &FileHandle{Mode: mode, Path: path, RecordLen: recLen}
	var f *os.File
	var err error
	switch mode {
	case "INPUT":
		f, err = os.Open(path)
	case "OUTPUT":
		f, err = os.Create(path)
	case "APPEND":
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	case "RANDOM":
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
		if recLen <= 0 {
			recLen = 128
		}
		fh.RecordLen = recLen
		fh.RecordBuf = make([]byte, recLen)
	default:
		return nil, NewRuntimeError(ErrCodeIllegalFunctionCall, "bad file mode", 0)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRuntimeError(ErrCodeFileNotFound, "File not found", 0)
		}
		return nil, wrapHostFault(err, "open file")
	}
	fh.file = f
	if mode == "INPUT" {
		fh.reader = bufio.NewReader(f)
	} else if mode == "OUTPUT" || mode == "APPEND" {
		fh.writer = bufio.NewWriter(f)
	}
	return fh, nil
}

func (fh *FileHandle) ReadLine() (string, bool) {
	if fh.reader == nil {
		return "", false
	}
	line, err := fh.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, true
}

func (fh *FileHandle) WriteString(s string) error {
	if fh.writer == nil {
		return errors.New("file not open for output")
	}
	_, err := fh.writer.WriteString(s)
	return wrapHostFault(err, "write file")
}

func (fh *FileHandle) GetRecord(recNum int) error {
	if fh.file == nil || fh.RecordLen == 0 {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "not a random file", 0)
	}
	offset := int64(recNum-1) * int64(fh.RecordLen)
	_, err := fh.file.ReadAt(fh.RecordBuf, offset)
	if err != nil && err.Error() != "EOF" {
		return wrapHostFault(err, "read record")
	}
	return nil
}

func (fh *FileHandle) PutRecord(recNum int) error {
	if fh.file == nil || fh.RecordLen == 0 {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "not a random file", 0)
	}
	offset := int64(recNum-1) * int64(fh.RecordLen)
	_, err := fh.file.WriteAt(fh.RecordBuf, offset)
	return wrapHostFault(err, "write record")
}

func (fh *FileHandle) Close() error {
	if fh.writer != nil {
		fh.writer.Flush()
	}
	if fh.file != nil {
		return fh.file.Close()
	}
	return nil
}

func (fh *FileHandle) Eof() bool {
	if fh.reader == nil {
		return true
	}
	_, err := fh.reader.Peek(1)
	return err != nil
}

// Size reports the current byte length of the underlying file (LOF).
func (fh *FileHandle) Size() int64 {
	if fh.writer != nil {
		fh.writer.Flush()
	}
	if fh.file == nil {
		return 0
	}
	st, err := fh.file.Stat()
	if err != nil {
		return 0
	}
	return st.Size()
}

// ---- statement executors ----

func (it *Interp) fileNumber(e Expr) (int, error) {
	v, err := it.evalExpr(e)
	if err != nil {
		return 0, err
	}
	n, err := toNumber(it, v)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (it *Interp) handleFor(e Expr) (*FileHandle, error) {
	n, err := it.fileNumber(e)
	if err != nil {
		return nil, err
	}
	fh, ok := it.files[n]
	if !ok {
		return nil, NewRuntimeError(ErrCodeIllegalFunctionCall, "Bad file number", it.currentLine())
	}
	return fh, nil
}

func (it *Interp) execOpen(st *OpenStmt) error {
	pathVal, err := it.evalExpr(st.Path)
	if err != nil {
		return err
	}
	n, err := it.fileNumber(st.FileNum)
	if err != nil {
		return err
	}
	if _, exists := it.files[n]; exists {
		return NewRuntimeError(ErrCodeFileAlreadyOpen, "File already open", it.currentLine())
	}
	recLen := 0
	if st.RecLen != nil {
		rv, err := it.evalExpr(st.RecLen)
		if err != nil {
			return err
		}
		rn, err := toNumber(it, rv)
		if err != nil {
			return err
		}
		recLen = int(rn)
	}
	fh, err := OpenFile(valueToString(pathVal), st.Mode, recLen)
	if err != nil {
		if be, ok := err.(*BASICError); ok {
			be.LineNumber = it.currentLine()
			return be
		}
		return err
	}
	it.files[n] = fh
	return nil
}

func (it *Interp) execClose(st *CloseStmt) error {
	if len(st.FileNums) == 0 {
		for n, fh := range it.files {
			fh.Close()
			delete(it.files, n)
		}
		return nil
	}
	for _, e := range st.FileNums {
		n, err := it.fileNumber(e)
		if err != nil {
			return err
		}
		if fh, ok := it.files[n]; ok {
			fh.Close()
			delete(it.files, n)
		}
	}
	return nil
}

// execWrite implements WRITE [#n,] expr-list: text operands quoted,
// numbers bare, fields comma-separated, CRLF record terminator.
func (it *Interp) execWrite(st *WriteStmt) error {
	var parts []string
	for _, e := range st.Items {
		v, err := it.evalExpr(e)
		if err != nil {
			return err
		}
		if v.IsNumeric {
			parts = append(parts, valueToString(v))
		} else {
			parts = append(parts, "\""+v.Str+"\"")
		}
	}
	record := strings.Join(parts, ",")
	if st.FileNum != nil {
		fh, err := it.handleFor(st.FileNum)
		if err != nil {
			return err
		}
		return fh.WriteString(record + "\r\n")
	}
	it.emitLine(record)
	return nil
}

func (it *Interp) execField(st *FieldStmt) error {
	fh, err := it.handleFor(st.FileNum)
	if err != nil {
		return err
	}
	fh.Fields = nil
	offset := 0
	for _, spec := range st.Fields {
		wv, err := it.evalExpr(spec.Width)
		if err != nil {
			return err
		}
		wn, err := toNumber(it, wv)
		if err != nil {
			return err
		}
		width := int(wn)
		fh.Fields = append(fh.Fields, FieldBinding{Offset: offset, Width: width, Var: normName(spec.Var)})
		offset += width
	}
	return nil
}

func (it *Interp) execGetRecord(st *GetRecordStmt) error {
	fh, err := it.handleFor(st.FileNum)
	if err != nil {
		return err
	}
	rec := 1
	if st.RecNum != nil {
		rec, err = it.fileNumber(st.RecNum)
		if err != nil {
			return err
		}
	}
	if err := fh.GetRecord(rec); err != nil {
		return err
	}
	for _, fb := range fh.Fields {
		end := fb.Offset + fb.Width
		if end > len(fh.RecordBuf) {
			end = len(fh.RecordBuf)
		}
		if fb.Offset >= end {
			continue
		}
		it.variables[fb.Var] = TextValue(string(fh.RecordBuf[fb.Offset:end]))
	}
	return nil
}

func (it *Interp) execPutRecord(st *PutRecordStmt) error {
	fh, err := it.handleFor(st.FileNum)
	if err != nil {
		return err
	}
	rec := 1
	if st.RecNum != nil {
		rec, err = it.fileNumber(st.RecNum)
		if err != nil {
			return err
		}
	}
	return fh.PutRecord(rec)
}

// fieldBindingFor locates the FIELD projection bound to a variable name
// across all open random files, for LSET/RSET mirroring.
func (it *Interp) fieldBindingFor(name string) (*FileHandle, *FieldBinding) {
	n := normName(name)
	for _, fh := range it.files {
		for i := range fh.Fields {
			if fh.Fields[i].Var == n {
				return fh, &fh.Fields[i]
			}
		}
	}
	return nil, nil
}

func (it *Interp) execLset(st *LsetStmt) error {
	return it.justifySet(st.Target, st.Value, false)
}

func (it *Interp) execRset(st *RsetStmt) error {
	return it.justifySet(st.Target, st.Value, true)
}

func (it *Interp) justifySet(target string, value Expr, right bool) error {
	v, err := it.evalExpr(value)
	if err != nil {
		return err
	}
	s := valueToString(v)
	fh, fb := it.fieldBindingFor(target)
	width := len(s)
	if fb != nil {
		width = fb.Width
	}
	if len(s) > width {
		s = s[:width]
	}
	pad := strings.Repeat(" ", width-len(s))
	if right {
		s = pad + s
	} else {
		s = s + pad
	}
	it.variables[normName(target)] = TextValue(s)
	if fh != nil && fb != nil {
		end := fb.Offset + fb.Width
		if end <= len(fh.RecordBuf) {
			copy(fh.RecordBuf[fb.Offset:end], s)
		}
	}
	return nil
}

func (it *Interp) execKill(st *KillStmt) error {
	v, err := it.evalExpr(st.Path)
	if err != nil {
		return err
	}
	if err := os.Remove(valueToString(v)); err != nil {
		if os.IsNotExist(err) {
			return NewRuntimeError(ErrCodeFileNotFound, "File not found", it.currentLine())
		}
		return wrapHostFault(err, "kill file")
	}
	return nil
}

func (it *Interp) execName(st *NameStmt) error {
	oldV, err := it.evalExpr(st.Old)
	if err != nil {
		return err
	}
	newV, err := it.evalExpr(st.New)
	if err != nil {
		return err
	}
	if err := os.Rename(valueToString(oldV), valueToString(newV)); err != nil {
		if os.IsNotExist(err) {
			return NewRuntimeError(ErrCodeFileNotFound, "File not found", it.currentLine())
		}
		return wrapHostFault(err, "rename file")
	}
	return nil
}

func (it *Interp) execFiles(st *FilesStmt) error {
	pattern := "*"
	if st.Pattern != nil {
		v, err := it.evalExpr(st.Pattern)
		if err != nil {
			return err
		}
		pattern = valueToString(v)
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return NewRuntimeError(ErrCodeIllegalFunctionCall, "Illegal function call", it.currentLine())
	}
	if len(matches) == 0 {
		return NewRuntimeError(ErrCodeFileNotFound, "File not found", it.currentLine())
	}
	for _, m := range matches {
		it.emitLine(filepath.Base(m))
	}
	return nil
}
