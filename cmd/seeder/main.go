package main

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/config"
	"github.com/poiesic/recall/core"
)

var samples = []*core.Item{
	{
		Title:  "The Grudge",
		Year:   2020,
		Cast:   []string{"Andrea Riseborough", "Demián Bichir", "John Cho", "Betty Gilpin", "Lin Shaye", "Jacki Weaver"},
		Genres: []string{"Horror", "Supernatural"},
		Href:   "The_Grudge_(2020_film)",
		Extract: "The Grudge is a 2020 American psychological supernatural horror film written and directed by Nicolas Pesce. " +
			"Originally announced as a reboot of the 2004 American remake and the original 2002 Japanese horror film Ju-On: The Grudge, " +
			"the film ended up taking place before and during the events of the 2004 film and its two direct sequels, and is the fourth " +
			"installment in the American The Grudge film series. The film stars Andrea Riseborough, Demián Bichir, John Cho, Betty Gilpin, " +
			"Lin Shaye, and Jacki Weaver, and follows a police officer who investigates several murders that are seemingly connected to a single house.",
		Thumbnail:       "https://upload.wikimedia.org/wikipedia/en/3/34/The_Grudge_2020_Poster.jpeg",
		ThumbnailWidth:  220,
		ThumbnailHeight: 326,
	},
	{
		Title:   "Tenet",
		Year:    2020,
		Cast:    []string{"John David Washington", "Robert Pattinson", "Elizabeth Debicki"},
		Genres:  []string{"Action", "Science Fiction"},
		Href:    "Tenet_(film)",
		Extract: "A secret agent learns to manipulate the flow of time to prevent an attack from the future.",
	},
	{
		Title:   "Soul",
		Year:    2020,
		Cast:    []string{"Jamie Foxx", "Tina Fey"},
		Genres:  []string{"Animated", "Fantasy"},
		Href:    "Soul_(2020_film)",
		Extract: "A middle school music teacher who dreams of playing jazz is separated from his body and must find his way back.",
	},
	{
		Title:   "Onward",
		Year:    2020,
		Cast:    []string{"Tom Holland", "Chris Pratt", "Julia Louis-Dreyfus"},
		Genres:  []string{"Animated", "Fantasy"},
		Href:    "Onward_(film)",
		Extract: "Two elf brothers set out on a quest to spend one more day with their late father.",
	},
	{
		Title:   "The Invisible Man",
		Year:    2020,
		Cast:    []string{"Elisabeth Moss", "Aldis Hodge", "Storm Reid"},
		Genres:  []string{"Horror", "Science Fiction"},
		Href:    "The_Invisible_Man_(2020_film)",
		Extract: "A woman believes she is being stalked by her abusive former partner after he appears to take his own life.",
	},
	{
		Title:   "Bad Boys for Life",
		Year:    2020,
		Cast:    []string{"Will Smith", "Martin Lawrence", "Vanessa Hudgens"},
		Genres:  []string{"Action", "Comedy"},
		Href:    "Bad_Boys_for_Life",
		Extract: "Two Miami detectives reunite to take down the leader of a drug cartel.",
	},
	{
		Title:   "Sonic the Hedgehog",
		Year:    2020,
		Cast:    []string{"Ben Schwartz", "James Marsden", "Jim Carrey"},
		Genres:  []string{"Family", "Adventure"},
		Href:    "Sonic_the_Hedgehog_(film)",
		Extract: "A fast blue hedgehog teams up with a small town sheriff to escape a mad scientist.",
	},
	{
		Title:   "Dolittle",
		Year:    2020,
		Cast:    []string{"Robert Downey Jr.", "Antonio Banderas", "Michael Sheen"},
		Genres:  []string{"Family", "Fantasy"},
		Href:    "Dolittle_(film)",
		Extract: "A doctor who can talk to animals sails to a mythical island to find a cure for the young queen.",
	},
}

// itemsFromFile returns an iterator over the items of a JSON array file.
func itemsFromFile(filename string) (iter.Seq[*core.Item], error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var items []*core.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return itemsFromSlice(items), nil
}

// itemsFromSlice returns an iterator over a slice of items.
func itemsFromSlice(items []*core.Item) iter.Seq[*core.Item] {
	return func(yield func(*core.Item) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// seed upserts every item from source and returns how many were written.
func seed(ctx context.Context, engine *recall.Engine, source iter.Seq[*core.Item]) (int, error) {
	n := 0
	for item := range source {
		clone := *item
		if _, err := engine.Catalog().UpsertItem(ctx, &clone); err != nil {
			return n, fmt.Errorf("seeding %q: %w", item.Title, err)
		}
		n++
	}
	return n, nil
}

func seedCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	cfg.Database.Path = c.String("db")

	var source iter.Seq[*core.Item]
	if src := c.String("src"); src != "" {
		source, err = itemsFromFile(src)
		if err != nil {
			return err
		}
	} else {
		source = itemsFromSlice(samples)
	}

	engine, err := recall.OpenConfig(c.Context, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	n, err := seed(c.Context, engine, source)
	if err != nil {
		return err
	}
	slog.Info("seeded catalog", "items", n, "db", cfg.Database.Path)
	return nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	app := &cli.App{
		Name:  "seeder",
		Usage: "Seed a recall database with sample movies",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to YAML configuration file",
				Value: "recall.yaml",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to BadgerDB database directory",
				Value: "./catalog_db",
			},
			&cli.StringFlag{
				Name:  "src",
				Usage: "JSON array of items to seed instead of the built-in samples",
			},
		},
		Action: seedCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
