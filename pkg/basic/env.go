package basic

import (
	"context"
	"math/rand"
	"sync"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/graphics"
)

// ForLoopInfo is one active FOR frame. A GOTO out of a loop body can
// leave stale frames behind; NEXT's name matching skips past them.
type ForLoopInfo struct {
	Var  string
	End  float64
	Step float64
	PC   int // index of the line right after the matching FOR
}

type doLoopInfo struct {
	PC int
}

type selectCaseInfo struct {
	TestValue Value
}

type subReturnInfo struct {
	PC     int
	Kind   string // "SUB" | "FUNCTION"
	Name   string
}

// Interp is the single state bag owning all runtime state for one
// program run. The mutex guards the host-facing accessors: a host may
// poll status from another goroutine while ExecuteChunk runs
// cooperatively on the calling goroutine.
type Interp struct {
	mu sync.Mutex

	RunID string

	program *Program
	pc      int
	running bool
	ended   bool

	jumpTarget int // -1 = none

	variables map[string]Value
	constants map[string]Value
	arrays    map[string]*Array
	userTypes map[string]*UserType
	defTypes  map[byte]string // first-letter -> default type name

	userFunctions map[string]*DefFnStmt
	subs          map[string]subLoc
	functions     map[string]subLoc
	labels        map[string]int
	labelsScanned bool

	// stack-overflow guards on GOSUB/FOR nesting; configurable through
	// the Interpreter section (max_gosub_depth / max_for_loop_depth)
	maxGosubDepth int
	maxForDepth   int

	gosubReturn  []int
	forLoops     []ForLoopInfo
	doLoops      []doLoopInfo
	whileLoops   []int // pc of each active WHILE line, innermost last
	selectStack  []selectCaseInfo
	subReturn    []subReturnInfo

	dataPool   []Value
	dataCursor int
	dataByLine map[int]int // line number -> first data_pool index contributed by DATA on that line

	rng     *rand.Rand
	lastRnd float64

	onErrorTarget int // 0 = none
	inHandler     bool
	resumeLine    int
	lastErrCode   int
	lastErrLine   int

	files map[int]*FileHandle

	Graphics *graphics.Facade
	sprites  map[string][]byte // GET-captured regions, keyed by array name
	fgColor  int
	bgColor  int
	printCol int // console column for PRINT's 14-column zones

	console Console
	display Display

	ctx    context.Context
	cancel context.CancelFunc
}

type subLoc struct {
	StartPC int
	EndLine int // pc index of the matching END SUB/END FUNCTION line
	Params  []string
	Kind    string
}

// NewInterp constructs an interpreter with empty runtime state. The
// initial screen mode and nesting caps come from configuration when a
// settings file was loaded, falling back to the classic defaults.
func NewInterp(console Console, display Display) *Interp {
	it := &Interp{
		variables:     make(map[string]Value),
		constants:     make(map[string]Value),
		arrays:        make(map[string]*Array),
		userTypes:     make(map[string]*UserType),
		defTypes:      make(map[byte]string),
		userFunctions: make(map[string]*DefFnStmt),
		subs:          make(map[string]subLoc),
		functions:     make(map[string]subLoc),
		labels:        make(map[string]int),
		dataByLine:    make(map[int]int),
		rng:           rand.New(rand.NewSource(1)),
		files:         make(map[int]*FileHandle),
		Graphics:      graphics.New(),
		sprites:       make(map[string][]byte),
		fgColor:       7,
		console:       console,
		display:       display,
		jumpTarget:    -1,
		maxGosubDepth: configuration.GetInt("Interpreter", "max_gosub_depth", 100),
		maxForDepth:   configuration.GetInt("Interpreter", "max_for_loop_depth", 200),
	}
	if mode := configuration.GetInt("Interpreter", "default_screen_mode", 0); mode != 0 {
		it.Graphics.SetScreen(mode, 0, 0)
	}
	return it
}

// Reset clears all runtime state and closes any open files.
func (it *Interp) Reset() {
	it.mu.Lock()
	defer it.mu.Unlock()
	for _, fh := range it.files {
		fh.Close()
	}
	it.variables = make(map[string]Value)
	it.constants = make(map[string]Value)
	it.arrays = make(map[string]*Array)
	it.userTypes = make(map[string]*UserType)
	it.defTypes = make(map[byte]string)
	it.userFunctions = make(map[string]*DefFnStmt)
	it.subs = make(map[string]subLoc)
	it.functions = make(map[string]subLoc)
	it.labels = make(map[string]int)
	it.labelsScanned = false
	it.gosubReturn = nil
	it.forLoops = nil
	it.doLoops = nil
	it.whileLoops = nil
	it.selectStack = nil
	it.subReturn = nil
	it.dataPool = nil
	it.dataCursor = 0
	it.dataByLine = make(map[int]int)
	it.files = make(map[int]*FileHandle)
	it.sprites = make(map[string][]byte)
	it.fgColor = 7
	it.bgColor = 0
	it.printCol = 0
	it.onErrorTarget = 0
	it.inHandler = false
	it.resumeLine = 0
	it.lastErrCode = 0
	it.lastErrLine = 0
	it.pc = 0
	it.running = false
	it.ended = false
	it.program = nil
}

func defaultLetterType() byte { return 'S' } // single-precision default per classic BASIC

// sigilDefault returns the zero Value appropriate for a name's type
// sigil: "$" -> empty text, otherwise numeric 0.
func sigilDefault(name string) Value {
	if len(name) > 0 && name[len(name)-1] == '$' {
		return TextValue("")
	}
	return NumberValue(0)
}
