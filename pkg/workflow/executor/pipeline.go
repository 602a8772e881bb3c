package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"customer-service-be/internal/pkg/logger"
	"customer-service-be/pkg/metrics"
	"customer-service-be/pkg/store"
	"customer-service-be/pkg/workflow/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultMaxPolicyPasses = 2

// Pipeline runs Ingest → Sentiment → Action → Policy → {Memory | Policy} → END
// over one interaction state, checkpointing after every stage.
type Pipeline struct {
	ingest    Stage
	sentiment Stage
	action    Stage
	policy    Stage
	memory    Stage

	checkpoints     store.Checkpointer
	metrics         *metrics.Workflow
	logger          logger.ILogger
	tracer          trace.Tracer
	maxPolicyPasses int
	now             func() time.Time
}

func NewPipeline(ingest, sentiment, action, policy, memory Stage, checkpoints store.Checkpointer, m *metrics.Workflow, log logger.ILogger) *Pipeline {
	return &Pipeline{
		ingest:          ingest,
		sentiment:       sentiment,
		action:          action,
		policy:          policy,
		memory:          memory,
		checkpoints:     checkpoints,
		metrics:         m,
		logger:          log,
		tracer:          otel.Tracer("customer-service-be/workflow"),
		maxPolicyPasses: defaultMaxPolicyPasses,
		now:             time.Now,
	}
}

// Run processes one message. The only error path is a checkpoint failure;
// every stage fault is recorded on the returned state instead.
func (p *Pipeline) Run(ctx context.Context, userID, message, sessionID string) (*state.InteractionState, error) {
	threadID := state.ThreadID(userID, sessionID)

	ctx, span := p.tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("thread_id", threadID),
	))
	defer span.End()

	turn, err := p.nextTurn(ctx, threadID)
	if err != nil {
		p.metrics.ObserveRun("checkpoint_failed")
		return nil, err
	}

	st := state.New(userID, message, sessionID)
	st.ThreadID = threadID

	p.logger.Info("Pipeline", "Run started", map[string]interface{}{
		"thread_id": threadID,
		"turn":      turn,
	})

	for _, s := range []Stage{p.ingest, p.sentiment, p.action} {
		st = p.runStage(ctx, s, st)
		if err := p.checkpoint(ctx, threadID, s.Name(), turn, st); err != nil {
			return nil, err
		}
	}

	for pass := 1; ; pass++ {
		st = p.runStage(ctx, p.policy, st)
		if err := p.checkpoint(ctx, threadID, p.policy.Name(), turn, st); err != nil {
			return nil, err
		}
		if st.Next() == state.Done {
			break
		}
		if pass >= p.maxPolicyPasses {
			p.logger.Warn("Pipeline", "Policy did not finalize, continuing to memory", map[string]interface{}{
				"thread_id": threadID,
				"passes":    pass,
			})
			break
		}
	}

	st = p.runStage(ctx, p.memory, st)
	if err := p.checkpoint(ctx, threadID, store.StageEnd, turn, st); err != nil {
		return nil, err
	}

	p.metrics.ObserveRun("completed")
	p.logger.Info("Pipeline", "Run completed", map[string]interface{}{
		"thread_id": threadID,
		"actions":   st.ActionsTaken,
	})
	return st, nil
}

func (p *Pipeline) nextTurn(ctx context.Context, threadID string) (int, error) {
	cp, err := p.checkpoints.Get(ctx, threadID)
	if errors.Is(err, store.ErrCheckpointNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}
	return cp.Turn + 1, nil
}

func (p *Pipeline) checkpoint(ctx context.Context, threadID, stage string, turn int, st *state.InteractionState) error {
	data, err := st.Marshal()
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	err = p.checkpoints.Put(ctx, &store.Checkpoint{
		ThreadID:  threadID,
		Stage:     stage,
		Turn:      turn,
		State:     data,
		UpdatedAt: p.now().UTC(),
	})
	if err != nil {
		p.metrics.ObserveRun("checkpoint_failed")
		p.logger.Error("Pipeline", "Checkpoint write failed", map[string]interface{}{
			"thread_id": threadID,
			"stage":     stage,
			"error":     err.Error(),
		})
		return fmt.Errorf("save checkpoint %s after %s: %w", threadID, stage, err)
	}
	return nil
}

// runStage hands the stage an owned copy and turns a panic into an error tag
func (p *Pipeline) runStage(ctx context.Context, s Stage, st *state.InteractionState) (out *state.InteractionState) {
	ctx, span := p.tracer.Start(ctx, "workflow.stage."+s.Name())
	start := p.now()
	before := len(st.ActionsTaken)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Pipeline", "Stage panicked", map[string]interface{}{
				"stage": s.Name(),
				"panic": fmt.Sprint(r),
			})
			out = st.Clone()
			if fb, ok := s.(fallbacker); ok {
				fb.Fallback(out)
			}
			out.AddActionf("%s_error: panic: %v", s.Name(), r)
		}

		// the audit log is append-only
		if len(out.ActionsTaken) < before {
			out.ActionsTaken = append([]string{}, st.ActionsTaken...)
		}

		faulted := false
		for _, tag := range out.ActionsTaken[before:] {
			if strings.Contains(tag, "_error: ") {
				faulted = true
				break
			}
		}
		p.metrics.ObserveStage(s.Name(), faulted, p.now().Sub(start))
		span.SetAttributes(attribute.Bool("faulted", faulted))
		span.End()
	}()

	out = s.Run(ctx, st.Clone())
	if out == nil {
		out = st.Clone()
	}
	return out
}
