package core

import "sync"

// Params is the mutable configuration surface read at verdict time.
// In-flight tasks use whatever values are current when they resolve.
type Params struct {
	RewardAmount           uint64   `json:"rewardAmount"`
	SlashAmount            uint64   `json:"slashAmount"`
	ReputationIncreaseStep int64    `json:"reputationIncreaseStep"`
	ReputationDecreaseStep int64    `json:"reputationDecreaseStep"`
	InitialReputation      int64    `json:"initialReputation"`
	MinReputation          int64    `json:"minReputation"`
	MaxReputation          int64    `json:"maxReputation"`
	OracleEventTypes       []string `json:"oracleEventTypes"`
	OracleRateLimit        int      `json:"oracleRateLimit"`
	OracleMaxWorkers       int      `json:"oracleMaxWorkers"`
}

// VerdictParams is the snapshot handed to the ledger for one verdict.
type VerdictParams struct {
	RewardAmount  uint64
	SlashAmount   uint64
	IncreaseStep  int64
	DecreaseStep  int64
	MinReputation int64
	MaxReputation int64
}

func (p Params) withDefaults() Params {
	if p.RewardAmount == 0 {
		p.RewardAmount = 1000000
	}
	if p.SlashAmount == 0 {
		p.SlashAmount = 500000
	}
	if p.ReputationIncreaseStep == 0 {
		p.ReputationIncreaseStep = 10
	}
	if p.ReputationDecreaseStep == 0 {
		p.ReputationDecreaseStep = 25
	}
	if p.InitialReputation == 0 {
		p.InitialReputation = 100
	}
	if p.MaxReputation == 0 {
		p.MaxReputation = 1000
	}
	if len(p.OracleEventTypes) == 0 {
		p.OracleEventTypes = []string{"wasm-VerificationAnswered"}
	}
	if p.OracleRateLimit == 0 {
		p.OracleRateLimit = 1
	}
	if p.OracleMaxWorkers == 0 {
		p.OracleMaxWorkers = 5
	}
	return p
}

// ParamStore guards the mutable params. Owners update it through the admin
// API; the coordinator and ledger read snapshots per call.
type ParamStore struct {
	mu sync.RWMutex
	p  Params
}

func NewParamStore(p Params) *ParamStore {
	return &ParamStore{p: p.withDefaults()}
}

func (s *ParamStore) Snapshot() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

func (s *ParamStore) Update(p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

// Verdict returns the reward/slash parameters current at resolve time.
func (s *ParamStore) Verdict() VerdictParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return VerdictParams{
		RewardAmount:  s.p.RewardAmount,
		SlashAmount:   s.p.SlashAmount,
		IncreaseStep:  s.p.ReputationIncreaseStep,
		DecreaseStep:  s.p.ReputationDecreaseStep,
		MinReputation: s.p.MinReputation,
		MaxReputation: s.p.MaxReputation,
	}
}

// InitialReputation is the score given to operators on first registration.
func (s *ParamStore) InitialReputation() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.InitialReputation
}
