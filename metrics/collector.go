package metrics

import (
	"sync/atomic"
	"time"
)

// Stage is the decision stage that produced a move.
type Stage string

const (
	StageOpening Stage = "opening"
	StageWin     Stage = "win"
	StageBlock   Stage = "block"
	StageSearch  Stage = "search"
	StageNone    Stage = "none"
)

type SearchMetric struct {
	Depth      int
	TopN       int
	Duration   time.Duration
	Candidates int
	Nodes      int
	Cutoffs    int
	Timeouts   int
	Stage      Stage
}

type MoveMetric struct {
	Step   int
	Player int // Player ID, same scheme as the game's StartingPlayer
	X, Y   int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int // Player ID
	Winner         int // Player ID, -1 for a draw
	Reason         string
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(depth, topN int)
	AddNode()
	AddCutoff()
	AddTimeout()
	SetCandidates(n int)
	Complete(stage Stage) SearchMetric
}

// Reporter is implemented by move choosers that collect search metrics.
type Reporter interface {
	LastMetric() SearchMetric
}

type collector struct {
	depth      int
	topN       int
	startTime  time.Time
	candidates atomic.Int32
	nodes      atomic.Int64
	cutoffs    atomic.Int64
	timeouts   atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(depth, topN int) {
	m.startTime = time.Now()
	m.depth = depth
	m.topN = topN
	m.candidates.Store(0)
	m.nodes.Store(0)
	m.cutoffs.Store(0)
	m.timeouts.Store(0)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddCutoff() {
	m.cutoffs.Add(1)
}

func (m *collector) AddTimeout() {
	m.timeouts.Add(1)
}

func (m *collector) SetCandidates(n int) {
	m.candidates.Store(int32(n))
}

func (m *collector) Complete(stage Stage) SearchMetric {
	return SearchMetric{
		Depth:      m.depth,
		TopN:       m.topN,
		Duration:   time.Since(m.startTime),
		Candidates: int(m.candidates.Load()),
		Nodes:      int(m.nodes.Load()),
		Cutoffs:    int(m.cutoffs.Load()),
		Timeouts:   int(m.timeouts.Load()),
		Stage:      stage,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(depth, topN int)             {}
func (m *dummyCollector) AddNode()                          {}
func (m *dummyCollector) AddCutoff()                        {}
func (m *dummyCollector) AddTimeout()                       {}
func (m *dummyCollector) SetCandidates(n int)               {}
func (m *dummyCollector) Complete(stage Stage) SearchMetric { return SearchMetric{Stage: stage} }
