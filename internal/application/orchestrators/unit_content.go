package orchestrators

import (
	"context"
	"log/slog"

	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/domain/course"
	"ezlearn/internal/domain/navigator"
)

// UnitPlatform is the part of the platform the unit page needs.
type UnitPlatform interface {
	ResolveUnit(ctx context.Context, sess platform.Session, ref platform.UnitRef) (course.Resolution, error)
	CommitUnit(ctx context.Context, sess platform.Session, c platform.UnitCommit) error
}

// UnitContentDeps holds dependencies for the unit orchestrators.
type UnitContentDeps struct {
	Platform UnitPlatform
}

// ResolveUnitInput carries input for ExecuteResolveUnit.
type ResolveUnitInput struct {
	Session platform.Session
	Target  navigator.Target
}

// ExecuteResolveUnit looks up a unit and its neighbours.
// PRE: Target names a course and unit
// POST: Returns the resolution, or the platform failure; a cancelled ctx
// means a newer lookup superseded this one
func ExecuteResolveUnit(ctx context.Context, input ResolveUnitInput, deps UnitContentDeps) (course.Resolution, error) {
	res, err := deps.Platform.ResolveUnit(ctx, input.Session, platform.UnitRef{
		CourseID: input.Target.CourseID,
		UnitID:   input.Target.UnitID,
		ViewerID: input.Target.ViewerID,
	})
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("unit_event", "event", "unit_resolve_superseded", "unit_id", input.Target.UnitID)
		} else {
			slog.Warn("unit_event", "event", "unit_resolve_failed", "course_id", input.Target.CourseID, "unit_id", input.Target.UnitID, "error", err)
		}
		return course.Resolution{}, err
	}
	return res, nil
}

// SubmitUnitInput carries the page-level save request.
type SubmitUnitInput struct {
	Session    platform.Session
	Submission navigator.Submission
}

// ExecuteSubmitUnit sends the displayed overview and any replacement media.
// PRE: Submission was built from a loaded page
// POST: Returns nil once the platform accepted the change
func ExecuteSubmitUnit(ctx context.Context, input SubmitUnitInput, deps UnitContentDeps) error {
	sub := input.Submission
	commit := platform.UnitCommit{
		UnitID:   sub.UnitID,
		CourseID: sub.CourseID,
		Overview: sub.Overview,
	}
	if r := sub.Replacement; r != nil {
		commit.File = &platform.File{Filename: r.Filename, ContentType: r.ContentType, Data: r.Data}
	}
	if err := deps.Platform.CommitUnit(ctx, input.Session, commit); err != nil {
		slog.Warn("unit_event", "event", "unit_submit_failed", "course_id", sub.CourseID, "unit_id", sub.UnitID, "error", err)
		return err
	}
	slog.Info("unit_event", "event", "unit_submitted", "course_id", sub.CourseID, "unit_id", sub.UnitID, "media_replaced", commit.File != nil)
	return nil
}
