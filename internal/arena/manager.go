package arena

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"turing-arena/internal/config"
	"turing-arena/internal/game"
	"turing-arena/internal/store"
)

const syntheticAlias = "Anonymous Player"

const persistTimeout = 3 * time.Second

// SessionStore is the slice of the persistence layer the manager needs.
type SessionStore interface {
	SaveSession(ctx context.Context, sess *game.Session) error
	ApplyGameOutcome(ctx context.Context, userID string, out store.GameOutcome) error
}

// OpponentEngine produces the synthetic side's behavior. Reply generation may
// block on a remote service; the manager always calls it off the session lock.
type OpponentEngine interface {
	PersonalityFor(sessionID string) string
	GenerateReply(ctx context.Context, transcript []game.Message, syntheticID, personality string) (string, time.Duration, error)
	GenerateGuess(ctx context.Context, transcript []game.Message, syntheticID string) (game.Verdict, error)
}

// Manager owns every live session. All mutation of one session goes through
// its per-session mutex, so handlers, timers and collaborator callbacks never
// interleave mid-transition.
type Manager struct {
	cfg      config.GameConfig
	scoring  game.ScoringConfig
	store    SessionStore
	engine   OpponentEngine
	registry *Registry
	sched    *Scheduler
	policy   *game.EndingPolicy

	mu       sync.Mutex
	sessions map[string]*liveSession

	rngMu sync.Mutex
	rng   *rand.Rand
}

type liveSession struct {
	mu    sync.Mutex
	sess  *game.Session
	parts map[string]Participant // by user id, conns resolved via registry

	graceTimer   *Task
	guessTimer   *Task
	revealTimer  *Task
	cleanupTimer *Task

	guessPending bool
	result       *game.Result
	resultSent   bool
}

func NewManager(cfg config.GameConfig, scoring game.ScoringConfig, st SessionStore, engine OpponentEngine, reg *Registry, sched *Scheduler) *Manager {
	seed := time.Now().UnixNano()
	return &Manager{
		cfg:      cfg,
		scoring:  scoring,
		store:    st,
		engine:   engine,
		registry: reg,
		sched:    sched,
		policy:   game.NewEndingPolicy(cfg.GuessPromptThreshold, cfg.MessageCeiling, cfg.EarlyEndReplyChance, rand.New(rand.NewSource(seed))),
		sessions: make(map[string]*liveSession),
		rng:      rand.New(rand.NewSource(seed + 1)),
	}
}

// MatchHumans pairs two waiting humans into a session.
func (m *Manager) MatchHumans(a, b Participant) {
	m.createSession(a, b)
}

// MatchSynthetic gives a timed-out waiter a synthetic opponent with a fresh
// opaque identity.
func (m *Manager) MatchSynthetic(p Participant) {
	synth := Participant{
		UserID:    "synth-" + uuid.NewString(),
		Username:  syntheticAlias,
		Synthetic: true,
	}
	m.createSession(p, synth)
}

func (m *Manager) createSession(a, b Participant) {
	now := m.sched.Now()
	id := store.NewID()
	personality := ""
	if a.Synthetic || b.Synthetic {
		personality = m.engine.PersonalityFor(id)
	}
	sess := game.NewSession(id, playerRef(a), playerRef(b), personality, now)
	ls := &liveSession{
		sess:  sess,
		parts: map[string]Participant{a.UserID: a, b.UserID: b},
	}

	m.mu.Lock()
	m.sessions[id] = ls
	m.mu.Unlock()
	for _, p := range [2]Participant{a, b} {
		if !p.Synthetic {
			m.registry.BindSession(p.UserID, id)
		}
	}
	m.save(sess)

	m.sendTo(a, SessionStartedEvent{Type: EventSessionStarted, SessionID: id, Opponent: opponentInfo(b)})
	m.sendTo(b, SessionStartedEvent{Type: EventSessionStarted, SessionID: id, Opponent: opponentInfo(a)})
	log.Info().Str("session_id", id).
		Str("player_a", a.UserID).Str("player_b", b.UserID).
		Bool("synthetic", a.Synthetic || b.Synthetic).
		Msg("session started")
}

// SubmitMessage appends a chat message and drives the synthetic side's
// reaction to it. Messages are rejected once any guess has been recorded.
func (m *Manager) SubmitMessage(sessionID, senderID, content string) error {
	ls := m.lookup(sessionID)
	if ls == nil {
		return ErrSessionNotFound
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	sess := ls.sess
	if sess.Status != game.StatusActive {
		return game.ErrSessionNotActive
	}
	if sess.InGuessingPhase() {
		return game.ErrGuessingPhase
	}
	sender, ok := sess.Player(senderID)
	if !ok {
		return game.ErrNotParticipant
	}

	msg := sess.AppendMessage(store.NewID(), senderID, content, m.sched.Now())
	m.save(sess)
	ls.broadcastLocked(m, NewMessageEvent{
		Type:      EventNewMessage,
		SessionID: sessionID,
		SenderID:  senderID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	})

	opp, _ := sess.Opponent(senderID)
	if sender.Synthetic || !opp.Synthetic {
		return nil
	}
	count := len(sess.Messages)
	if count == m.policy.GuessPromptThreshold-1 {
		m.sendTo(ls.parts[senderID], MessageLimitWarningEvent{Type: EventMessageLimitWarning, SessionID: sessionID})
	}
	switch {
	case m.policy.ShouldForceGuess(count, true):
		if sess.GuessFor(opp.UserID) == nil && !ls.guessPending {
			ls.guessPending = true
			go m.syntheticGuess(sessionID, opp.UserID)
		}
	case m.policy.ShouldReply(count):
		m.sendTo(ls.parts[senderID], OpponentTypingEvent{Type: EventOpponentTyping, SessionID: sessionID})
		transcript := append([]game.Message(nil), sess.Messages...)
		go m.syntheticReply(sessionID, opp.UserID, sess.Personality, transcript)
	}
	return nil
}

// SubmitGuess records one participant's verdict. The first guess freezes the
// chat; repeat submissions from the same player are a silent no-op. When the
// counterpart is synthetic its own guess is scheduled after a short delay.
func (m *Manager) SubmitGuess(sessionID, playerID string, verdict game.Verdict) error {
	ls := m.lookup(sessionID)
	if ls == nil {
		return ErrSessionNotFound
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	sess := ls.sess
	if sess.Status != game.StatusActive {
		return game.ErrSessionNotActive
	}
	if _, ok := sess.Player(playerID); !ok {
		return game.ErrNotParticipant
	}
	if !sess.RecordGuess(playerID, verdict, m.sched.Now()) {
		return nil
	}
	m.save(sess)

	opp, _ := sess.Opponent(playerID)
	m.sendTo(ls.parts[opp.UserID], OpponentGuessedEvent{Type: EventOpponentGuessed, SessionID: sessionID})
	if opp.Synthetic && sess.GuessFor(opp.UserID) == nil && !ls.guessPending {
		ls.guessPending = true
		synthID := opp.UserID
		ls.guessTimer = m.sched.After(m.cfg.SyntheticGuessDelay, func() {
			m.syntheticGuess(sessionID, synthID)
		})
	}

	if sess.BothGuessed() {
		m.finalizeLocked(ls)
	}
	return nil
}

// HandleDisconnect starts the grace window for a human who dropped mid
// session. If they do not come back in time the session is forfeited.
func (m *Manager) HandleDisconnect(userID string) {
	sessionID, ok := m.registry.SessionByUser(userID)
	if !ok {
		return
	}
	ls := m.lookup(sessionID)
	if ls == nil {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.sess.Status != game.StatusActive {
		return
	}
	p, ok := ls.sess.Player(userID)
	if !ok || p.Synthetic {
		return
	}

	ls.graceTimer.Stop()
	ls.graceTimer = m.sched.After(m.cfg.DisconnectGrace, func() {
		m.expireGrace(sessionID, userID)
	})
	log.Info().Str("session_id", sessionID).Str("user_id", userID).
		Dur("grace", m.cfg.DisconnectGrace).Msg("disconnect grace started")
}

func (m *Manager) expireGrace(sessionID, userID string) {
	if _, ok := m.registry.Conn(userID); ok {
		return
	}
	m.EndByForfeit(sessionID, userID, "opponent disconnected")
}

// Resume re-attaches a reconnecting user to their active session and replays
// its state over the fresh connection. Reports whether a session was resumed.
func (m *Manager) Resume(userID string) bool {
	sessionID, ok := m.registry.SessionByUser(userID)
	if !ok {
		return false
	}
	ls := m.lookup(sessionID)
	if ls == nil {
		return false
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	sess := ls.sess
	if sess.Status != game.StatusActive {
		return false
	}
	ls.graceTimer.Stop()
	ls.graceTimer = nil

	opp, _ := sess.Opponent(userID)
	me := ls.parts[userID]
	m.sendTo(me, SessionStartedEvent{Type: EventSessionStarted, SessionID: sessionID, Opponent: opponentInfo(ls.parts[opp.UserID])})
	for _, msg := range sess.Messages {
		m.sendTo(me, NewMessageEvent{
			Type:      EventNewMessage,
			SessionID: sessionID,
			SenderID:  msg.SenderID,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	if sess.GuessFor(opp.UserID) != nil {
		m.sendTo(me, OpponentGuessedEvent{Type: EventOpponentGuessed, SessionID: sessionID})
	}
	log.Info().Str("session_id", sessionID).Str("user_id", userID).Msg("session resumed")
	return true
}

// EndByForfeit abandons an active session because one side left for good.
func (m *Manager) EndByForfeit(sessionID, leaverID, reason string) {
	ls := m.lookup(sessionID)
	if ls == nil {
		return
	}
	ls.mu.Lock()
	if ls.sess.Status != game.StatusActive {
		ls.mu.Unlock()
		return
	}
	m.abandonLocked(ls, reason)
	ls.mu.Unlock()

	log.Info().Str("session_id", sessionID).Str("user_id", leaverID).
		Str("reason", reason).Msg("session forfeited")
	m.remove(sessionID)
}

// SweepStale abandons active sessions older than the TTL. Wired to the
// janitor job; catches sessions whose participants silently went away.
func (m *Manager) SweepStale(now time.Time) {
	m.mu.Lock()
	all := make([]*liveSession, 0, len(m.sessions))
	for _, ls := range m.sessions {
		all = append(all, ls)
	}
	m.mu.Unlock()

	for _, ls := range all {
		ls.mu.Lock()
		stale := ls.sess.Status == game.StatusActive && now.Sub(ls.sess.StartTime) >= m.cfg.SessionTTL
		if stale {
			m.abandonLocked(ls, "session expired")
		}
		id := ls.sess.ID
		ls.mu.Unlock()
		if stale {
			log.Warn().Str("session_id", id).Msg("stale session abandoned")
			m.remove(id)
		}
	}
}

// ActiveCount is exported for the health endpoint.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) syntheticReply(sessionID, synthID, personality string, transcript []game.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	content, delay, err := m.engine.GenerateReply(ctx, transcript, synthID, personality)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("reply generation failed, retrying")
		content, delay, err = m.engine.GenerateReply(ctx, transcript, synthID, personality)
	}
	if err != nil {
		// The session stays playable; the synthetic side just goes quiet
		// this turn.
		log.Error().Err(err).Str("session_id", sessionID).Msg("reply generation failed twice, skipping turn")
		return
	}
	m.sched.After(delay, func() {
		if err := m.SubmitMessage(sessionID, synthID, content); err != nil {
			log.Debug().Err(err).Str("session_id", sessionID).Msg("synthetic reply dropped")
		}
	})
}

func (m *Manager) syntheticGuess(sessionID, synthID string) {
	ls := m.lookup(sessionID)
	if ls == nil {
		return
	}
	ls.mu.Lock()
	transcript := append([]game.Message(nil), ls.sess.Messages...)
	ls.mu.Unlock()

	verdict, err := m.engine.GenerateGuess(context.Background(), transcript, synthID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("guess generation failed, defaulting")
		verdict = game.VerdictHuman
	}
	if err := m.SubmitGuess(sessionID, synthID, verdict); err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("synthetic guess dropped")
	}
}

// finalizeLocked completes the session: scores it, persists the outcome,
// applies per-user stats and schedules the delayed reveal.
func (m *Manager) finalizeLocked(ls *liveSession) {
	sess := ls.sess
	sess.Status = game.StatusCompleted
	sess.EndTime = m.sched.Now()

	res, err := game.ComputeResult(sess, m.scoring, sess.EndTime)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("score computation failed")
		return
	}
	sess.PointsA = res.A.Score.Total
	sess.PointsB = res.B.Score.Total
	sess.WinnerID = res.WinnerID
	ls.result = &res
	m.save(sess)

	for _, pr := range [2]game.PlayerResult{res.A, res.B} {
		player, _ := sess.Player(pr.PlayerID)
		if player.Synthetic {
			continue
		}
		uid := pr.PlayerID
		out := store.GameOutcome{
			Points:           pr.Score.Total,
			Won:              res.WinnerID == uid,
			CorrectGuess:     pr.Correct,
			DeceptionSuccess: pr.DeceptionSuccess,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := m.store.ApplyGameOutcome(ctx, uid, out); err != nil {
				log.Error().Err(err).Str("user_id", uid).Msg("apply game outcome")
			}
		}()
	}

	ls.graceTimer.Stop()
	ls.guessTimer.Stop()
	sessionID := sess.ID
	ls.revealTimer = m.sched.After(m.revealDelay(), func() {
		m.reveal(sessionID)
	})
	log.Info().Str("session_id", sessionID).Str("winner_id", res.WinnerID).
		Int("messages", res.MessageCount).Msg("session completed")
}

// reveal pushes the personalized results to both humans after the suspense
// delay, then schedules the session's removal from the live index.
func (m *Manager) reveal(sessionID string) {
	ls := m.lookup(sessionID)
	if ls == nil {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.resultSent || ls.result == nil {
		return
	}
	ls.resultSent = true

	res := *ls.result
	stats := SessionStats{
		MessageCount:        res.MessageCount,
		DurationSeconds:     res.DurationSeconds,
		MeanResponseLatency: res.MeanResponseLatency,
	}
	perPlayer := map[string]game.PlayerResult{res.A.PlayerID: res.A, res.B.PlayerID: res.B}
	for uid, p := range ls.parts {
		if p.Synthetic {
			continue
		}
		opp, _ := ls.sess.Opponent(uid)
		m.sendTo(p, SessionResultEvent{
			Type:      EventSessionResult,
			SessionID: sessionID,
			WinnerID:  res.WinnerID,
			You:       resultPayload(perPlayer[uid]),
			Opponent:  resultPayload(perPlayer[opp.UserID]),
			Stats:     stats,
		})
	}
	ls.broadcastLocked(m, SessionEndedEvent{
		Type:      EventSessionEnded,
		SessionID: sessionID,
		Status:    string(game.StatusCompleted),
		Reason:    "both guessed",
	})

	ls.cleanupTimer = m.sched.After(m.cfg.ResultGrace, func() {
		m.remove(sessionID)
	})
}

// abandonLocked terminates a session without scoring.
func (m *Manager) abandonLocked(ls *liveSession, reason string) {
	sess := ls.sess
	sess.Status = game.StatusAbandoned
	sess.EndTime = m.sched.Now()
	ls.graceTimer.Stop()
	ls.guessTimer.Stop()
	ls.revealTimer.Stop()
	ls.cleanupTimer.Stop()
	m.save(sess)
	ls.broadcastLocked(m, SessionEndedEvent{
		Type:      EventSessionEnded,
		SessionID: sess.ID,
		Status:    string(game.StatusAbandoned),
		Reason:    reason,
	})
}

func (m *Manager) remove(sessionID string) {
	m.mu.Lock()
	ls, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	for uid, p := range ls.parts {
		if !p.Synthetic {
			m.registry.UnbindSession(uid)
		}
	}
}

func (m *Manager) lookup(sessionID string) *liveSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID]
}

// sendTo resolves the participant's live connection at send time, so events
// after a reconnect reach the fresh socket rather than the dead one.
func (m *Manager) sendTo(p Participant, ev any) {
	if p.Synthetic {
		return
	}
	if c, ok := m.registry.Conn(p.UserID); ok {
		c.Send(ev)
		return
	}
	p.send(ev)
}

func (ls *liveSession) broadcastLocked(m *Manager, ev any) {
	for _, p := range ls.parts {
		m.sendTo(p, ev)
	}
}

func (m *Manager) revealDelay() time.Duration {
	spread := m.cfg.RevealDelayMax - m.cfg.RevealDelayMin
	if spread <= 0 {
		return m.cfg.RevealDelayMin
	}
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.cfg.RevealDelayMin + time.Duration(m.rng.Int63n(int64(spread)))
}

func (m *Manager) save(sess *game.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := m.store.SaveSession(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("persist session")
	}
}

func playerRef(p Participant) game.PlayerRef {
	return game.PlayerRef{UserID: p.UserID, Synthetic: p.Synthetic}
}

func opponentInfo(p Participant) OpponentInfo {
	return OpponentInfo{ID: p.UserID, Username: p.Username, IsSynthetic: p.Synthetic}
}

func resultPayload(pr game.PlayerResult) PlayerResultPayload {
	return PlayerResultPayload{
		Verdict:    pr.Verdict,
		Correct:    pr.Correct,
		Score:      ScorePayload{Total: pr.Score.Total, Breakdown: pr.Score},
		Multiplier: pr.Score.Multiplier,
	}
}
