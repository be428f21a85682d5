// Command browse runs a browsing session against the document store from the
// terminal: it applies a filter, pages through the listing and can toggle
// favorites or open a flat.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"residence/internal/browse"
	"residence/internal/config"
	"residence/internal/currency"
	"residence/internal/localstore"
	"residence/internal/logger"
	"residence/internal/repository"

	flag "github.com/spf13/pflag"
)

type options struct {
	input    browse.FilterInput
	currency string
	pages    int
	userID   string
	email    string
	toggle   []string
	view     string
}

func main() {
	var opts options
	flag.StringVar(&opts.input.OfferType, "offer", "all", "offer type (rent, sale or all)")
	flag.StringVar(&opts.input.FlatType, "type", "all", "flat type (studio, 2BR, ... or all)")
	flag.StringVar(&opts.input.MinPrice, "min-price", "", "minimum price in the base currency")
	flag.StringVar(&opts.input.MaxPrice, "max-price", "", "maximum price in the base currency")
	flag.StringVar(&opts.input.SortBy, "sort", "price-desc", "price-asc, price-desc, area-asc or area-desc")
	flag.StringVar(&opts.input.SearchTerm, "search", "", "match location or description")
	flag.BoolVar(&opts.input.ShowFavorites, "favorites", false, "only list favorite flats")
	flag.StringVarP(&opts.currency, "currency", "c", "", "display currency (defaults to the base currency)")
	flag.IntVarP(&opts.pages, "pages", "n", 1, "number of pages to load")
	flag.StringVar(&opts.userID, "user", "", "signed in user id, enables favorites")
	flag.StringVar(&opts.email, "email", "", "email of the signed in user")
	flag.StringSliceVar(&opts.toggle, "toggle", nil, "flat ids to toggle as favorite")
	flag.StringVar(&opts.view, "view", "", "flat id to open")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "browse:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Env, os.Stderr)

	rates, err := currency.Load(cfg.Currency.RatesFile, cfg.Currency.Base)
	if err != nil {
		return err
	}

	repo, err := repository.NewRepository(ctx, log,
		cfg.Database.Driver, cfg.GetDSN(),
		cfg.Database.MaxConnections, cfg.Database.MaxIdleConnections)
	if err != nil {
		return err
	}
	defer repo.Close()

	local, err := localstore.Open(cfg.Local.StatePath, log)
	if err != nil {
		return err
	}

	term := newTerminal(os.Stdout)
	sessionOpts := []browse.Option{browse.WithPageSize(cfg.Listing.PageSize)}
	if opts.currency != "" {
		sessionOpts = append(sessionOpts, browse.WithCurrency(opts.currency))
	}

	session, err := browse.New(browse.Deps{
		Store:    repo,
		Local:    local,
		Renderer: term,
		Notifier: term,
		Rates:    rates,
		Log:      log,
	}, sessionOpts...)
	if err != nil {
		return err
	}
	defer session.Close()

	if opts.userID != "" {
		session.OnAuthStateChanged(ctx, &browse.User{ID: opts.userID, Email: opts.email})
	}

	for _, id := range opts.toggle {
		if _, err := session.ToggleFavorite(ctx, id); err != nil && !errors.Is(err, browse.ErrFavoritesLimit) {
			return err
		}
	}

	if opts.view != "" {
		if _, err := session.ViewFlat(ctx, opts.view); err != nil {
			return err
		}
		return nil
	}

	if _, err := session.Apply(ctx, opts.input); err != nil {
		return err
	}
	for i := 1; i < opts.pages && session.HasMore(); i++ {
		if _, err := session.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}
