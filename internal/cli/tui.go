package cli

import (
	"context"
	"os"

	"mirador/internal/outline"
	"mirador/internal/store"
	"mirador/internal/tui"
)

// resolveStore picks the workspace: an explicit --dir wins, otherwise the
// nearest ancestor holding a workspace directory. ok is false when neither
// exists.
func resolveStore(app *App) (store.Store, bool) {
	if app.Dir != "" {
		return store.Store{Dir: app.Dir}, true
	}
	cwd, err := os.Getwd()
	if err != nil {
		return store.Store{}, false
	}
	if dir, found := store.DiscoverDir(cwd); found {
		return store.Store{Dir: dir}, true
	}
	return store.Store{}, false
}

func runTUI(app *App) error {
	s, persist := resolveStore(app)

	var doc *outline.Doc
	if persist {
		loaded, err := s.LoadDoc(context.Background())
		if err != nil {
			return err
		}
		doc = loaded
	} else {
		doc = outline.NewDoc()
	}
	if len(doc.RootEdgeIDs()) == 0 {
		if err := seedSampleDoc(doc); err != nil {
			return err
		}
	}
	return tui.Run(doc, tui.Options{Store: s, Persist: persist})
}

// seedSampleDoc fills an empty document with a small outline that shows
// off nesting and a mirror edge.
func seedSampleDoc(doc *outline.Doc) error {
	projects, _, err := doc.AddNode(nil, "Projects")
	if err != nil {
		return err
	}
	redesign, _, err := doc.AddNode(&projects, "Website redesign")
	if err != nil {
		return err
	}
	for _, text := range []string{"Draft new navigation", "Collect style references", "Ship landing page"} {
		if _, _, err := doc.AddNode(&redesign, text); err != nil {
			return err
		}
	}
	if _, _, err := doc.AddNode(&projects, "Quarterly review"); err != nil {
		return err
	}
	inbox, _, err := doc.AddNode(nil, "Inbox")
	if err != nil {
		return err
	}
	if _, _, err := doc.AddNode(&inbox, "Call the plumber"); err != nil {
		return err
	}
	// The redesign project also shows up in the inbox as a mirror.
	if _, err := doc.CreateMirrorEdge(redesign, &inbox, 1, "seed"); err != nil {
		return err
	}
	return nil
}
