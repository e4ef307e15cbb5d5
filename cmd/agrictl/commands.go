package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/forecast"
	"agri-demand-api/pkg/models"
	"agri-demand-api/pkg/services"

	"github.com/urfave/cli/v2"
)

func newSeasonFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "season",
		Usage:    "Season (Summer, Monsoon, Winter, Spring, Autumn)",
		Required: true,
	}
}

func newWeatherFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "weather",
		Usage:    "Weather (Hot, Rainy, Cold, Normal, Humid, Dry)",
		Required: true,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "agrictl",
		Usage: "Score agricultural product demand from the command line",
		Commands: []*cli.Command{
			{
				Name:   "products",
				Usage:  "List the product catalog",
				Action: runProducts,
			},
			{
				Name:  "score",
				Usage: "Score one product",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product", Usage: "Exact product name", Required: true},
					newSeasonFlag(),
					newWeatherFlag(),
				},
				Action: runScore,
			},
			{
				Name:  "sweep",
				Usage: "Rank every catalog product for a season and weather",
				Flags: []cli.Flag{
					newSeasonFlag(),
					newWeatherFlag(),
					&cli.IntFlag{Name: "top", Usage: "Only print the N highest ranked products (0 prints all)"},
				},
				Action: runSweep,
			},
			{
				Name:  "batch",
				Usage: "Score the products listed in an .xlsx or .csv file",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: "file", Usage: "Spreadsheet with product, cost and quantity columns", Required: true},
					newSeasonFlag(),
					newWeatherFlag(),
				},
				Action: runBatch,
			},
			{
				Name:  "archive",
				Usage: "Maintain the forecast archive",
				Subcommands: []*cli.Command{
					{
						Name:   "reset",
						Usage:  "Drop and recreate the archive collection",
						Action: runArchiveReset,
					},
				},
			},
			{
				Name:  "cache",
				Usage: "Maintain the forecast cache",
				Subcommands: []*cli.Command{
					{
						Name:   "flush",
						Usage:  "Delete every cached score and ranking",
						Action: runCacheFlush,
					},
				},
			},
		},
	}
}

// newForecastService builds a service without cache or archive.
func newForecastService() *services.DemandForecastService {
	return services.NewDemandForecastService(forecast.NewEngine(catalog.Default()), nil, nil)
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runProducts(c *cli.Context) error {
	return printJSON(c, newForecastService().Products())
}

func runScore(c *cli.Context) error {
	res, err := newForecastService().Predict(c.Context, models.PredictDemandRequest{
		Product: c.String("product"),
		Season:  c.String("season"),
		Weather: c.String("weather"),
	})
	if err != nil {
		return err
	}
	return printJSON(c, res)
}

func runSweep(c *cli.Context) error {
	res, err := newForecastService().Sweep(c.Context, c.String("season"), c.String("weather"))
	if err != nil {
		return err
	}
	if top := c.Int("top"); top > 0 && top < len(res.Predictions) {
		res.Predictions = res.Predictions[:top]
	}
	return printJSON(c, res)
}

func runBatch(c *cli.Context) error {
	path := c.Path("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	ds, err := services.ParseDataset(filepath.Base(path), data)
	if err != nil {
		return err
	}
	res, err := newForecastService().Batch(c.Context, models.BatchPredictRequest{
		Products: ds.Records,
		Season:   c.String("season"),
		Weather:  c.String("weather"),
	})
	if err != nil {
		return err
	}
	return printJSON(c, res)
}

func runArchiveReset(c *cli.Context) error {
	cfg := config.LoadConfig()
	archive, err := services.NewForecastArchiveService(c.Context, cfg.Qdrant)
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.Reset(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "collection %q reset\n", archive.Collection())
	return nil
}

func runCacheFlush(c *cli.Context) error {
	cfg := config.LoadConfig()
	if !cfg.Cache.Enabled {
		return errors.New("cache is disabled, set CACHE_ENABLED=true")
	}
	cache, err := services.NewForecastCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.InvalidateAll(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "cache flushed")
	return nil
}
