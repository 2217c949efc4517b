package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/interstellar-mission/game/engine"
	"github.com/wricardo/interstellar-mission/game/generator"
	"github.com/wricardo/interstellar-mission/game/render"
)

var (
	ErrSolveInProgress = errors.New("a search is already running for this session")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Events published to live subscribers
const (
	EventSessionCreated = "session_created"
	EventSolveStarted   = "solve_started"
	EventSolveFinished  = "solve_finished"
	EventPlayback       = "playback"
)

// DefaultSolveTimeout bounds a search when the request sets no timeout
const DefaultSolveTimeout = 30 * time.Second

// missionServiceImpl implements the MissionService interface
type missionServiceImpl struct {
	sessions     SessionManager
	configs      ConfigManager
	publisher    EventPublisher
	logger       *zap.Logger
	solveTimeout time.Duration
	defaults     engine.SearchOptions
	mu           sync.RWMutex
}

// Option configures the mission service
type Option func(*missionServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *missionServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPublisher sends solve and playback events to live subscribers
func WithPublisher(p EventPublisher) Option {
	return func(s *missionServiceImpl) { s.publisher = p }
}

// WithSolveTimeout overrides DefaultSolveTimeout
func WithSolveTimeout(d time.Duration) Option {
	return func(s *missionServiceImpl) {
		if d > 0 {
			s.solveTimeout = d
		}
	}
}

// WithSearchDefaults sets the options used by sessions created without any
func WithSearchDefaults(opts engine.SearchOptions) Option {
	return func(s *missionServiceImpl) {
		if engine.ValidateSearchOptions(opts) == nil {
			s.defaults = opts
		}
	}
}

// NewMissionService creates a new mission service instance
func NewMissionService(sessions SessionManager, configs ConfigManager, opts ...Option) MissionService {
	s := &missionServiceImpl{
		sessions:     sessions,
		configs:      configs,
		logger:       zap.NewNop(),
		solveTimeout: DefaultSolveTimeout,
		defaults:     engine.DefaultSearchOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func configIDFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".json" || ext == ".yaml" || ext == ".yml" {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// CreateSession creates a new mission session for a universe
func (s *missionServiceImpl) CreateSession(ctx context.Context, configName string, opts *engine.SearchOptions) (*SessionInfo, error) {
	var (
		config   *engine.UniverseConfig
		configID string
		err      error
	)
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configLoadError(configName, err)
		}
		configID = configIDFromName(configName)
	} else {
		configID, config = s.configs.GetDefault()
	}

	searchOpts := s.defaults
	if opts != nil {
		searchOpts = *opts
	}

	s.mu.Lock()
	sess, err := s.sessions.Create("", configID, config, searchOpts)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("config_id", configID),
		zap.String("mode", string(searchOpts.Mode)))
	s.publish(sess.ID, EventSessionCreated, map[string]string{"config_id": configID})

	return s.sessionInfo(sess), nil
}

// configLoadError lists the available universes when the requested one is missing
func (s *missionServiceImpl) configLoadError(configName string, err error) error {
	if strings.Contains(err.Error(), "configuration not found") {
		if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
			ids := make([]string, 0, len(available))
			for _, cfg := range available {
				ids = append(ids, cfg.ConfigID)
			}
			return fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, ids, err)
		}
	}
	return fmt.Errorf("failed to load config %s: %w", configName, err)
}

func (s *missionServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// GetSession retrieves session information
func (s *missionServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *missionServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession cancels any running search and removes the session
func (s *missionServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		sess.Job.Cancel()
	}
	return s.sessions.Delete(sessionID)
}

func (s *missionServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	s.mu.RLock()
	status := s.statusLocked(sess)
	s.mu.RUnlock()

	info := &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Options:        sess.Options,
		Solve:          status,
		Universe:       sess.Config,
	}
	if frame, err := sess.Engine.Playback(); err == nil {
		info.Playback = frame
	}
	return info
}

// mergeOptions applies a request's overrides to the session defaults
func mergeOptions(base engine.SearchOptions, req SolveRequest) (engine.SearchOptions, error) {
	opts := base
	if req.Mode != "" {
		opts.Mode = req.Mode
	}
	if req.MaxPathLength != 0 {
		opts.MaxPathLength = req.MaxPathLength
	}
	if req.ForbidRevisit != nil {
		opts.ForbidRevisit = *req.ForbidRevisit
	}
	if req.MaxSolutions != 0 {
		opts.MaxSolutions = req.MaxSolutions
	}
	if req.TimeoutMs < 0 {
		return opts, fmt.Errorf("%w: timeout_ms must be non-negative", ErrInvalidRequest)
	}
	if err := engine.ValidateSearchOptions(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *missionServiceImpl) timeoutFor(req SolveRequest) time.Duration {
	if req.TimeoutMs > 0 {
		return time.Duration(req.TimeoutMs) * time.Millisecond
	}
	return s.solveTimeout
}

// beginJob registers a running job on the session, refusing to start a second one
func (s *missionServiceImpl) beginJob(sess *Session, opts engine.SearchOptions, cancel context.CancelFunc) (*SolveJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.Job != nil && sess.Job.State == SolveRunning {
		return nil, ErrSolveInProgress
	}
	job := &SolveJob{
		State:     SolveRunning,
		Options:   opts,
		StartedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	sess.Job = job
	return job, nil
}

// runJob executes the search and records its outcome on the job
func (s *missionServiceImpl) runJob(ctx context.Context, sess *Session, job *SolveJob) {
	defer close(job.done)
	defer job.cancel()

	result, err := sess.Engine.Resolve(ctx, job.Options)

	s.mu.Lock()
	job.FinishedAt = time.Now()
	switch {
	case err == nil:
		job.State = SolveDone
	case errors.Is(err, context.Canceled):
		job.State = SolveCancelled
		job.Err = "search cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		job.State = SolveFailed
		job.Err = "search timed out"
	default:
		job.State = SolveFailed
		job.Err = err.Error()
	}
	status := s.statusLocked(sess)
	s.mu.Unlock()

	fields := []zap.Field{
		zap.String("session_id", sess.ID),
		zap.String("state", string(job.State)),
		zap.Duration("elapsed", job.FinishedAt.Sub(job.StartedAt)),
	}
	if result != nil {
		fields = append(fields,
			zap.Bool("found", result.Found),
			zap.Int("solutions", len(result.Solutions)),
			zap.Int("nodes", result.Stats.NodesVisited))
	}
	s.logger.Info("search finished", fields...)

	if job.State == SolveDone {
		if err := s.sessions.Save(sess.ID); err != nil {
			s.logger.Warn("failed to persist session after search", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	s.publish(sess.ID, EventSolveFinished, status)
}

// Solve runs a search and waits for it to finish
func (s *missionServiceImpl) Solve(ctx context.Context, sessionID string, req SolveRequest) (*SolveStatus, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	opts, err := mergeOptions(sess.Options, req)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeoutFor(req))
	job, err := s.beginJob(sess, opts, cancel)
	if err != nil {
		cancel()
		return nil, err
	}

	s.runJob(runCtx, sess, job)
	return s.GetSolveStatus(ctx, sessionID)
}

// StartSolve launches a search in the background and returns immediately
func (s *missionServiceImpl) StartSolve(ctx context.Context, sessionID string, req SolveRequest) (*SolveStatus, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	opts, err := mergeOptions(sess.Options, req)
	if err != nil {
		return nil, err
	}

	// The search outlives the request that started it.
	runCtx, cancel := context.WithTimeout(context.Background(), s.timeoutFor(req))
	job, err := s.beginJob(sess, opts, cancel)
	if err != nil {
		cancel()
		return nil, err
	}

	s.logger.Info("search started",
		zap.String("session_id", sess.ID),
		zap.String("mode", string(opts.Mode)),
		zap.Int("max_path_length", opts.MaxPathLength))
	go s.runJob(runCtx, sess, job)

	s.mu.RLock()
	status := s.statusLocked(sess)
	s.mu.RUnlock()
	s.publish(sess.ID, EventSolveStarted, status)
	return status, nil
}

// GetSolveStatus reports the latest search of a session
func (s *missionServiceImpl) GetSolveStatus(ctx context.Context, sessionID string) (*SolveStatus, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked(sess), nil
}

// CancelSolve stops a running search. Finished searches are left as they are.
func (s *missionServiceImpl) CancelSolve(ctx context.Context, sessionID string) (*SolveStatus, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	job := sess.Job
	running := job != nil && job.State == SolveRunning
	s.mu.RUnlock()

	if running {
		job.Cancel()
		select {
		case <-job.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.GetSolveStatus(ctx, sessionID)
}

// statusLocked must be called with s.mu held
func (s *missionServiceImpl) statusLocked(sess *Session) *SolveStatus {
	status := &SolveStatus{
		SessionID: sess.ID,
		State:     SolveIdle,
		Options:   sess.Options,
	}

	if job := sess.Job; job != nil {
		status.State = job.State
		status.Options = job.Options
		status.Error = job.Err
		started := job.StartedAt
		status.StartedAt = &started
		if !job.FinishedAt.IsZero() {
			finished := job.FinishedAt
			status.FinishedAt = &finished
		}
	}

	result := sess.Engine.Result()
	if result == nil {
		return status
	}
	// A result restored from disk has no job.
	if sess.Job == nil {
		status.State = SolveDone
		status.Options = result.Options
	}
	if status.State != SolveDone {
		return status
	}

	stats := result.Stats
	status.Found = result.Found
	status.SolutionCount = len(result.Solutions)
	status.FinalEnergy = result.FinalEnergy
	status.FinalStars = result.FinalStars
	status.Stats = &stats
	if result.Found {
		status.Path = result.Solutions[0].Path
	}
	return status
}

// ListSolutions returns a page of the accepted solutions
func (s *missionServiceImpl) ListSolutions(ctx context.Context, sessionID string, opts SolutionListOptions) (*SolutionPage, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := sess.Engine.Result()
	if result == nil {
		return nil, engine.ErrNoResult
	}
	solutions := result.Solutions
	total := len(solutions)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "asc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	page := []SolutionSummary{}
	if opts.Order == "desc" {
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			page = append(page, summarize(i, solutions[i]))
		}
	} else {
		for i := start; i < end; i++ {
			page = append(page, summarize(i, solutions[i]))
		}
	}

	return &SolutionPage{
		Solutions:      page,
		TotalSolutions: total,
		Page:           opts.Page,
		PageSize:       opts.Limit,
		TotalPages:     totalPages,
		HasNext:        opts.Page < totalPages,
		HasPrevious:    opts.Page > 1,
	}, nil
}

func summarize(index int, sol engine.Solution) SolutionSummary {
	return SolutionSummary{
		Index:       index,
		Steps:       sol.Steps(),
		FinalEnergy: sol.FinalEnergy(),
		FinalStars:  sol.FinalStars(),
		Path:        sol.Path,
		EnergyTrace: sol.EnergyTrace,
		StarsTrace:  sol.StarsTrace,
	}
}

// playback runs one cursor operation, then persists and publishes the new frame
func (s *missionServiceImpl) playback(sessionID string, op func(*engine.MissionEngine) (*engine.PlaybackFrame, error)) (*engine.PlaybackFrame, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	frame, err := op(sess.Engine)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(sess.ID); err != nil {
		s.logger.Warn("failed to persist playback cursor", zap.String("session_id", sess.ID), zap.Error(err))
	}
	s.publish(sess.ID, EventPlayback, frame)
	return frame, nil
}

// Step moves the playback cursor by steps (negative rewinds)
func (s *missionServiceImpl) Step(ctx context.Context, sessionID string, steps int) (*engine.PlaybackFrame, error) {
	return s.playback(sessionID, func(e *engine.MissionEngine) (*engine.PlaybackFrame, error) {
		return e.Step(steps)
	})
}

// ResetPlayback rewinds the selected solution to the origin
func (s *missionServiceImpl) ResetPlayback(ctx context.Context, sessionID string) (*engine.PlaybackFrame, error) {
	return s.playback(sessionID, func(e *engine.MissionEngine) (*engine.PlaybackFrame, error) {
		return e.ResetPlayback()
	})
}

// SelectSolution switches playback to another accepted solution
func (s *missionServiceImpl) SelectSolution(ctx context.Context, sessionID string, index int) (*engine.PlaybackFrame, error) {
	return s.playback(sessionID, func(e *engine.MissionEngine) (*engine.PlaybackFrame, error) {
		return e.SelectSolution(index)
	})
}

// GetPlayback returns the frame under the cursor
func (s *missionServiceImpl) GetPlayback(ctx context.Context, sessionID string) (*engine.PlaybackFrame, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Playback()
}

// DescribeCell reports the static features of one cell
func (s *missionServiceImpl) DescribeCell(ctx context.Context, sessionID string, at engine.Coord) (*engine.CellInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	info, err := sess.Engine.Describe(at)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// RenderPNG draws the universe with the path up to a playback step
func (s *missionServiceImpl) RenderPNG(ctx context.Context, sessionID string, opts RenderOptions) ([]byte, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var frame *engine.PlaybackFrame
	if opts.Step < 0 {
		frame, err = sess.Engine.Playback()
	} else {
		solution, _ := sess.Engine.Cursor()
		frame, err = sess.Engine.Frame(solution, opts.Step)
	}
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrNoResult), errors.Is(err, engine.ErrNoSolution):
		// Nothing to trace; draw the bare universe.
		frame = nil
	default:
		return nil, err
	}

	title := ""
	if frame == nil {
		title = sess.Config.Name
	}
	return render.PNG(sess.Engine.Grid(), frame, render.Options{CellSize: opts.CellSize, Title: title})
}

// ListConfigs returns available universes
func (s *missionServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a universe by name
func (s *missionServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.UniverseConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig validates and stores a universe
func (s *missionServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.UniverseConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// GenerateConfig builds a random universe and saves it under configName
func (s *missionServiceImpl) GenerateConfig(ctx context.Context, configName string, opts generator.Options) (*ConfigInfo, error) {
	if configName == "" {
		return nil, fmt.Errorf("%w: config name is required", ErrInvalidRequest)
	}
	if opts.Name == "" {
		opts.Name = configIDFromName(configName)
	}

	config, err := generator.Generate(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return nil, err
	}

	filename := configName
	if configIDFromName(configName) == configName {
		filename += ".json"
	}
	s.logger.Info("universe generated",
		zap.String("config_id", configIDFromName(configName)),
		zap.Uint64("seed", opts.Seed),
		zap.Int("rows", config.Rows),
		zap.Int("cols", config.Cols))
	return NewConfigInfo(configIDFromName(configName), filename, config), nil
}

func (s *missionServiceImpl) publish(sessionID, event string, data interface{}) {
	if s.publisher != nil {
		s.publisher.BroadcastEvent(sessionID, event, data)
	}
}
