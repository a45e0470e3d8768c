// Package pkg provides the libraries behind decksmith, a tool that turns card
// lists into decks and decks into printable artifacts.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Model: [deck] (decks, line items, printings and edits), [display]
//     (which image a card shows) and [aggregate] (per-copy units and tokens)
//  2. Acquisition: [scryfall] (catalog client), [setcatalog] (set list),
//     [batch] (throttled list resolution) and [compose] (image loading and
//     dual-face compositing)
//  3. Artifacts: [layout] (A4 sheet geometry), [archive] (ZIP of card
//     images), [document] (paginated PDF) and [sink] (directory and S3 output)
//  4. Orchestration and infrastructure: [pipeline] (export and import runs),
//     [cache], [httputil], [config], [errors], [observability], [progress]
//     and [buildinfo]
//
// # Data Flow
//
//	card list text
//	     ↓
//	[batch] parse + sequential catalog lookups   → [deck.Deck]
//	     ↓
//	[aggregate] units (copies, backs, tokens)
//	     ↓
//	[compose] acquire images (one fetch per reference)
//	     ↓
//	[archive] ZIP  or  [layout] + [document] A4 PDF
//	     ↓
//	[sink] directory or S3 bucket
//
// # Quick Start
//
//	client := scryfall.NewClient()
//	acq := compose.NewAcquirer(compose.NewRaster(compose.NewLoader()), nil)
//	runner := pipeline.NewRunner(acq, client, nil)
//
//	imp, err := runner.Import(ctx, "Burn", "4 Lightning Bolt\n4 Lava Spike", pipeline.ImportOptions{})
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Export(ctx, imp.Deck, pipeline.Options{Format: "3x3"})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(res.Name, res.Data, 0o644)
package pkg
