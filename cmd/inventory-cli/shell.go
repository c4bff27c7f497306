package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/client"
	"github.com/akilcn01-oss/Inventory-Management/internal/config"
	"github.com/akilcn01-oss/Inventory-Management/internal/dispatch"
	"github.com/akilcn01-oss/Inventory-Management/internal/model"
)

// shell is the presentation layer. Apart from start, its methods run on the UI loop,
// so its fields need no locking.
type shell struct {
	async      *client.AsyncClient
	dispatcher *dispatch.Dispatcher
	settings   *config.Settings
	loop       *dispatch.Loop
	out        io.Writer
	errOut     io.Writer

	pending  int
	exitCode int
}

func newShell(async *client.AsyncClient, d *dispatch.Dispatcher, s *config.Settings, loop *dispatch.Loop, out, errOut io.Writer) *shell {
	return &shell{
		async:      async,
		dispatcher: d,
		settings:   s,
		loop:       loop,
		out:        out,
		errOut:     errOut,
	}
}

// track registers one more in-flight operation. The loop is closed once all of them settled.
func track[T any](s *shell, onSuccess func(T)) dispatch.Handlers[T] {
	s.pending++
	return dispatch.Handlers[T]{
		OnSuccess: onSuccess,
		OnFailure: s.fail,
		OnSettled: s.settled,
	}
}

func (s *shell) fail(err error) {
	fmt.Fprintln(s.errOut, "Error:", client.UserMessage(err))
	s.exitCode = exitError
}

func (s *shell) settled() {
	s.pending--
	if s.pending == 0 {
		s.loop.Close()
	}
}

// start parses the command and dispatches its first operation. It returns an error only for bad usage.
func (s *shell) start(ctx context.Context, command string, args []string) error {
	switch command {
	case "health":
		s.async.TestConnection(ctx, track(s, func(ok bool) {
			if !ok {
				fmt.Fprintf(s.errOut, "Cannot reach the inventory API at %s\n", s.async.Client().BaseURL())
				s.exitCode = exitError
				return
			}
			fmt.Fprintf(s.out, "Inventory API at %s is up\n", s.async.Client().BaseURL())
		}))
	case "list":
		opts, err := s.parseList(args)
		if err != nil {
			return err
		}
		s.async.ListProducts(ctx, opts, track(s, s.printProducts))
	case "get":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		s.async.GetProduct(ctx, id, track(s, func(p *model.Product) {
			if p == nil {
				fmt.Fprintf(s.errOut, "Product %d not found\n", id)
				s.exitCode = exitError
				return
			}
			s.printProduct(*p)
		}))
	case "create":
		var draft model.Product
		if _, err := parseProductFlags("create", args, &draft); err != nil {
			return err
		}
		s.async.CreateProduct(ctx, draft, track(s, func(p *model.Product) {
			fmt.Fprintf(s.out, "Created product %d\n", p.ID)
			s.printProduct(*p)
			s.refreshStats(ctx)
		}))
	case "update":
		if len(args) == 0 {
			return errors.New("update needs a product ID")
		}
		id, err := parseID(args[:1])
		if err != nil {
			return err
		}
		var changes model.Product
		set, err := parseProductFlags("update", args[1:], &changes)
		if err != nil {
			return err
		}
		// the API replaces the whole record, so unchanged fields come from the current version
		s.async.GetProduct(ctx, id, track(s, func(current *model.Product) {
			if current == nil {
				fmt.Fprintf(s.errOut, "Product %d not found\n", id)
				s.exitCode = exitError
				return
			}
			draft := mergeProduct(*current, changes, set)
			s.async.UpdateProduct(ctx, id, draft, track(s, func(p *model.Product) {
				fmt.Fprintf(s.out, "Updated product %d\n", p.ID)
				s.printProduct(*p)
				s.refreshStats(ctx)
			}))
		}))
	case "delete":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		s.async.DeleteProduct(ctx, id, track(s, func(bool) {
			fmt.Fprintf(s.out, "Deleted product %d\n", id)
			s.refreshStats(ctx)
		}))
	case "stats":
		s.async.DashboardStats(ctx, track(s, s.printStats))
	case "categories":
		s.async.Categories(ctx, track(s, func(categories []string) {
			if len(categories) == 0 {
				fmt.Fprintln(s.out, "No categories yet")
			}
			for _, c := range categories {
				fmt.Fprintln(s.out, c)
			}
		}))
	case "report":
		kind, dir, err := parseReport(args)
		if err != nil {
			return err
		}
		s.downloadReport(ctx, kind, dir)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// refreshStats re-fetches the dashboard after a mutation.
func (s *shell) refreshStats(ctx context.Context) {
	s.async.DashboardStats(ctx, track(s, func(stats *model.DashboardStats) {
		fmt.Fprintf(s.out, "Inventory: %d products in %d categories, %d low on stock, worth %s\n",
			stats.TotalProducts, stats.TotalCategories, stats.LowStockCount, stats.FormattedTotalValue())
	}))
}

func (s *shell) downloadReport(ctx context.Context, kind model.ReportKind, dir string) {
	apiClient := s.async.Client()
	// the file is written on the worker as well
	dispatch.Dispatch(ctx, s.dispatcher, func(ctx context.Context) (string, error) {
		document, err := apiClient.DownloadReport(ctx, kind)
		if err != nil {
			return "", err
		}
		path := filepath.Join(dir, kind.FileName(time.Now()))
		if err := os.WriteFile(path, document, 0o644); err != nil {
			return "", fmt.Errorf("failed to save report: %w", err)
		}
		return path, nil
	}, track(s, func(path string) {
		fmt.Fprintf(s.out, "Report saved to %s\n", path)
	}))
}

func (s *shell) printProducts(products []model.Product) {
	if len(products) == 0 {
		fmt.Fprintln(s.out, "No products found")
		return
	}
	threshold := s.settings.LowStockThreshold()
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tQTY\tPRICE\tVALUE\tSTOCK")
	for _, p := range products {
		stock := "ok"
		if p.IsLowStock(threshold) {
			stock = "LOW"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Category, p.Quantity, p.FormattedPrice(), p.FormattedTotalValue(), stock)
	}
	_ = w.Flush()
}

func (s *shell) printProduct(p model.Product) {
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", p.ID)
	fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	fmt.Fprintf(w, "Category:\t%s\n", p.Category)
	fmt.Fprintf(w, "Quantity:\t%d\n", p.Quantity)
	fmt.Fprintf(w, "Price:\t%s\n", p.FormattedPrice())
	fmt.Fprintf(w, "Total value:\t%s\n", p.FormattedTotalValue())
	if p.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", p.Description)
	}
	fmt.Fprintf(w, "Created:\t%s\n", p.CreatedAt)
	fmt.Fprintf(w, "Updated:\t%s\n", p.UpdatedAt)
	_ = w.Flush()
}

func (s *shell) printStats(stats *model.DashboardStats) {
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total products:\t%d\n", stats.TotalProducts)
	fmt.Fprintf(w, "Categories:\t%d\n", stats.TotalCategories)
	fmt.Fprintf(w, "Low stock:\t%d (%.1f%%)\n", stats.LowStockCount, stats.LowStockPercentage())
	fmt.Fprintf(w, "Inventory value:\t%s\n", stats.FormattedTotalValue())
	fmt.Fprintf(w, "Added this week:\t%d\n", stats.RecentProducts)
	fmt.Fprintf(w, "Avg per category:\t%.1f\n", stats.AverageProductsPerCategory())
	for _, c := range stats.TopCategories {
		fmt.Fprintf(w, "  %s\t%d\n", c.Name, c.Count)
	}
	_ = w.Flush()
	if stats.HasLowStockAlerts() {
		fmt.Fprintln(s.out, "Some products are running low. Run 'list -low-stock' to see them.")
	}
}

func (s *shell) parseList(args []string) (client.ListOptions, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	page := fs.Int("page", 1, "page number, starting at 1")
	category := fs.String("category", "", "only this category")
	search := fs.String("search", "", "text in name or description")
	lowStock := fs.Bool("low-stock", false, "only products below the low-stock threshold")
	if err := fs.Parse(args); err != nil {
		return client.ListOptions{}, err
	}
	if *page < 1 {
		return client.ListOptions{}, fmt.Errorf("page must be at least 1, got %d", *page)
	}

	opts := client.Page(*page-1, s.settings.ItemsPerPage())
	opts.Category = *category
	opts.Search = *search
	if *lowStock {
		opts = opts.WithLowStock(true)
	}
	return opts, nil
}

// parseProductFlags fills p from the flags and returns the names of the flags given.
func parseProductFlags(name string, args []string, p *model.Product) (map[string]bool, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&p.Name, "name", "", "product name")
	fs.StringVar(&p.Category, "category", "", "category")
	fs.IntVar(&p.Quantity, "quantity", 0, "units in stock")
	fs.Float64Var(&p.Price, "price", 0, "unit price")
	fs.StringVar(&p.Description, "description", "", "description")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set, nil
}

func mergeProduct(current, changes model.Product, set map[string]bool) model.Product {
	draft := current.Draft()
	if set["name"] {
		draft.Name = changes.Name
	}
	if set["category"] {
		draft.Category = changes.Category
	}
	if set["quantity"] {
		draft.Quantity = changes.Quantity
	}
	if set["price"] {
		draft.Price = changes.Price
	}
	if set["description"] {
		draft.Description = changes.Description
	}
	return draft
}

func parseID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one product ID")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product ID %q", args[0])
	}
	return id, nil
}

func parseReport(args []string) (model.ReportKind, string, error) {
	if len(args) == 0 {
		return "", "", errors.New("report needs a kind: full or low-stock")
	}
	kind, err := model.ParseReportKind(args[0])
	if err != nil {
		return "", "", err
	}
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dir := fs.String("dir", ".", "directory to save the report in")
	if err := fs.Parse(args[1:]); err != nil {
		return "", "", err
	}
	return kind, *dir, nil
}
