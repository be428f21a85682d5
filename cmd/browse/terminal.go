package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"residence/internal/browse"
)

// terminal renders session state as plain text
type terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func newTerminal(w io.Writer) *terminal {
	return &terminal{w: w}
}

var statusText = map[browse.Status]string{
	browse.StatusNoResults:       "No flats match these filters.",
	browse.StatusNoFavorites:     "You have no favorite flats yet.",
	browse.StatusEndOfPagination: "No more flats to load.",
	browse.StatusError:           "The listing could not be loaded.",
}

func (t *terminal) RenderList(view browse.ListView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(view.Flats) > 0 {
		tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\tID\tPRICE\tAREA\tOFFER\tTYPE\tLOCATION")
		for _, f := range view.Flats {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f m²\t%s\t%s\t%s\n",
				star(f.Favorite), f.ID, f.PriceLabel, f.Area, f.OfferType, f.FlatType, f.Location)
		}
		_ = tw.Flush()
	}

	if msg, ok := statusText[view.Status]; ok {
		fmt.Fprintln(t.w, msg)
	} else if view.HasMore {
		fmt.Fprintf(t.w, "%d flats shown, more available.\n", len(view.Flats))
	}
}

func (t *terminal) RenderDetails(f browse.FlatView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.w, "%s %s\n", star(f.Favorite), f.ID)
	fmt.Fprintf(t.w, "  %s, %s for %s\n", f.FlatType, f.OfferType, f.PriceLabel)
	fmt.Fprintf(t.w, "  %.0f m², %d bedrooms, %d bathrooms\n", f.Area, f.Bedrooms, f.Bathrooms)
	if f.Location != "" {
		fmt.Fprintf(t.w, "  %s\n", f.Location)
	}
	if len(f.Amenities) > 0 {
		fmt.Fprintf(t.w, "  Amenities: %s\n", strings.Join(f.Amenities, ", "))
	}
	if f.Description != "" {
		fmt.Fprintf(t.w, "  %s\n", f.Description)
	}
}

func (t *terminal) RenderRecentlyViewed(flats []browse.FlatView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(flats) == 0 {
		return
	}
	ids := make([]string, len(flats))
	for i, f := range flats {
		ids[i] = f.ID
	}
	fmt.Fprintf(t.w, "Recently viewed: %s\n", strings.Join(ids, ", "))
}

func (t *terminal) Notify(kind browse.NoticeKind, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "[%s] %s\n", kind, message)
}

func star(on bool) string {
	if on {
		return "*"
	}
	return " "
}
