package console

import (
	"context"
	"log/slog"

	"ezlearn/internal/application/orchestrators"
	"ezlearn/internal/domain/navigator"
)

// Notice messages for unit requests.
const (
	MsgUnitSaved      = "Unit updated successfully"
	MsgUnitSaveFailed = "Unit update failed"
)

type page struct {
	nav *navigator.Navigator
	// cancel aborts the lookup in flight, if any.
	cancel context.CancelFunc
}

func pageKey(courseID, unitID string) string {
	return courseID + "/" + unitID
}

// OpenUnit opens a fresh page for target and resolves it. A page already
// open at the same address is replaced and its lookup cancelled.
// PRE: target names a course and unit
// POST: The returned view is the resolved page; when a newer lookup
// overtook this one the view reflects whatever is newest
func (c *Console) OpenUnit(ctx context.Context, target navigator.Target) (navigator.View, error) {
	target.ViewerID = c.sess.ViewerID
	key := pageKey(target.CourseID, target.UnitID)

	c.mu.Lock()
	if old, ok := c.pages[key]; ok && old.cancel != nil {
		old.cancel()
	}
	p := &page{nav: navigator.New(target)}
	c.pages[key] = p
	gen := p.nav.BeginResolve(target)
	lookup, cancel := p.startLookup(ctx)
	c.mu.Unlock()

	defer cancel()
	return c.resolve(lookup, key, p, target, gen)
}

// startLookup cancels the lookup in flight and returns the context for the
// next one. Callers hold the console lock.
func (p *page) startLookup(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cancel != nil {
		p.cancel()
	}
	lookup, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	return lookup, cancel
}

// resolve looks target up and applies the answer only if p is still the
// page at key and no newer lookup has started on it.
func (c *Console) resolve(lookup context.Context, key string, p *page, target navigator.Target, gen uint64) (navigator.View, error) {
	res, err := orchestrators.ExecuteResolveUnit(lookup,
		orchestrators.ResolveUnitInput{Session: c.sess, Target: target},
		orchestrators.UnitContentDeps{Platform: c.deps.Platform})

	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.pages[key] == p
	if current && p.nav.Generation() == gen {
		p.cancel = nil
	}
	if err != nil {
		if !current || p.nav.Generation() != gen {
			return p.nav.View(), nil
		}
		return p.nav.View(), err
	}
	if current && p.nav.ApplyResolution(gen, res) {
		slog.Debug("unit_event", "event", "unit_resolved", "unit_id", res.Content.ID, "generation", gen)
	}
	return p.nav.View(), nil
}

// Page returns the current view of an open unit page.
func (c *Console) Page(courseID, unitID string) (navigator.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[pageKey(courseID, unitID)]
	if !ok {
		return navigator.View{}, ErrPageNotOpen
	}
	return p.nav.View(), nil
}

// SwitchTab shows the overview or lecture tab.
func (c *Console) SwitchTab(courseID, unitID string, tab navigator.Tab) (navigator.View, error) {
	return c.withPage(courseID, unitID, func(n *navigator.Navigator) error {
		return n.SwitchTab(tab)
	})
}

// DocumentLoaded records that the embedded document finished rendering.
func (c *Console) DocumentLoaded(courseID, unitID string) (navigator.View, error) {
	return c.withPage(courseID, unitID, func(n *navigator.Navigator) error {
		n.DocumentLoaded()
		return nil
	})
}

// BeginEdit opens the overview editor.
func (c *Console) BeginEdit(courseID, unitID string) (navigator.View, error) {
	return c.withPage(courseID, unitID, func(n *navigator.Navigator) error {
		return n.BeginEdit()
	})
}

// Type replaces the overview draft text.
func (c *Console) Type(courseID, unitID, text string) (navigator.View, error) {
	return c.withPage(courseID, unitID, func(n *navigator.Navigator) error {
		return n.Type(text)
	})
}

// SaveDraft shows the draft text on the page without submitting it.
func (c *Console) SaveDraft(courseID, unitID string) (navigator.View, error) {
	return c.withPage(courseID, unitID, func(n *navigator.Navigator) error {
		return n.SaveDraft()
	})
}

// CancelEdit discards the overview draft.
func (c *Console) CancelEdit(courseID, unitID string) (navigator.View, error) {
	return c.withPage(courseID, unitID, func(n *navigator.Navigator) error {
		return n.CancelEdit()
	})
}

// ReplaceMedia keeps a local copy of the picked file for preview and shows
// it in place of the unit's media until the page is submitted.
func (c *Console) ReplaceMedia(courseID, unitID, filename, contentType string, data []byte) (navigator.View, error) {
	if _, err := c.Page(courseID, unitID); err != nil {
		return navigator.View{}, err
	}
	ref, err := c.deps.Previews.SavePreview(filename, data)
	if err != nil {
		return navigator.View{}, err
	}
	return c.withPage(courseID, unitID, func(n *navigator.Navigator) error {
		n.ReplaceMedia(navigator.Replacement{
			Filename:    filename,
			ContentType: contentType,
			Data:        data,
			PreviewRef:  ref,
		})
		return nil
	})
}

// GoTo follows the previous or next link. The page moves to the new
// address; with no neighbour in that direction nothing happens.
// POST: The returned view's Target names the unit the page now shows
func (c *Console) GoTo(ctx context.Context, courseID, unitID string, dir navigator.Direction) (navigator.View, error) {
	key := pageKey(courseID, unitID)

	c.mu.Lock()
	p, ok := c.pages[key]
	if !ok {
		c.mu.Unlock()
		return navigator.View{}, ErrPageNotOpen
	}
	target, gen, moved, err := p.nav.GoTo(dir)
	if err != nil || !moved {
		v := p.nav.View()
		c.mu.Unlock()
		return v, err
	}
	next := pageKey(target.CourseID, target.UnitID)
	delete(c.pages, key)
	if old, ok := c.pages[next]; ok && old != p && old.cancel != nil {
		old.cancel()
	}
	c.pages[next] = p
	lookup, cancel := p.startLookup(ctx)
	c.mu.Unlock()

	defer cancel()
	return c.resolve(lookup, next, p, target, gen)
}

// Submit sends the displayed overview and any replacement media, raising a
// notice either way.
func (c *Console) Submit(ctx context.Context, courseID, unitID string) (navigator.View, error) {
	c.mu.Lock()
	p, ok := c.pages[pageKey(courseID, unitID)]
	if !ok {
		c.mu.Unlock()
		return navigator.View{}, ErrPageNotOpen
	}
	sub, err := p.nav.Submission()
	if err != nil {
		v := p.nav.View()
		c.mu.Unlock()
		return v, err
	}
	c.mu.Unlock()

	err = orchestrators.ExecuteSubmitUnit(ctx,
		orchestrators.SubmitUnitInput{Session: c.sess, Submission: sub},
		orchestrators.UnitContentDeps{Platform: c.deps.Platform})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(MsgUnitSaveFailed)
		return p.nav.View(), err
	}
	c.succeed(MsgUnitSaved)
	return p.nav.View(), nil
}

func (c *Console) withPage(courseID, unitID string, fn func(*navigator.Navigator) error) (navigator.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[pageKey(courseID, unitID)]
	if !ok {
		return navigator.View{}, ErrPageNotOpen
	}
	err := fn(p.nav)
	return p.nav.View(), err
}
