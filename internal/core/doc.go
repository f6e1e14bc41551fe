// Package core provides the ingestion pipeline for tabular uploads.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, the CLI, or tests without
// modification.
//
// # Pipeline
//
// Each uploaded file passes through the same stages:
//
//  1. A [SheetDecoder] turns the file's bytes into its first [Sheet]
//  2. [BuildColumns] derives the column model from the first file's header
//  3. [NormalizeRows] maps data rows onto the model, coercing every cell
//     with [CoerceCell]
//  4. A [Validator] checks every cell against its column's [RuleSet]
//  5. [Summarize] classifies every row as blank, errors, edited or unchanged
//
// The [Orchestrator] runs these stages per file, in input order, and merges
// the results into one [Dataset]:
//
//	o := core.NewOrchestrator(core.Options{
//	    Validator: core.NewValidator(core.DefaultRuleSet(), ""),
//	})
//	ds, err := o.Ingest(ctx, files, func(p core.Progress) {
//	    log.Printf("%d%%", p.Percent())
//	})
//
// Datasets are copy-on-write: [Dataset.ApplyEdit] returns a new value with
// the edited row revalidated and the summary recomputed.
//
// # Rules and Profiles
//
// Rules are a tagged variant ([RuleKind] required, format, range or custom)
// built with constructors such as [Required], [Number] and [Rejects], or
// loaded from YAML with [LoadRuleSet]. Named [Profile] values bundle a rule
// set with a sheet label and are registered at init time; see the profiles
// subpackage.
//
// # Sessions
//
// [Service] runs ingestions in the background for the web layer. Progress
// is broadcast to subscribers via [Service.SubscribeProgress] and the
// merged dataset stays available for review and edits until it is
// finalized, reset or expires.
//
// # Error Handling
//
// Structural failures ([ErrNoFiles], [FileReadError], [EmptySheetError])
// abort an ingestion. Validation findings never do; they are carried as
// [Diagnostic] values. Technical errors are mapped to user-friendly messages
// using [MapError]. Each error category has a unique code for support
// reference:
//
//   - FILE001-FILE009: File errors (size, type, decoding, empty sheets)
//   - VAL001-VAL004: Edit and rule errors
//   - UPL001-UPL006: Ingestion errors (cancelled, busy, not found, timeout)
//   - RATE001: Too many requests
package core
