// Package settings persists a versioned settings document and keeps it in
// step with the running application version.
//
// A [Store] owns one JSON file. It is constructed with the default settings,
// a typed schema and a migration table:
//
//	store, err := settings.New(appsettings.Defaults(), appsettings.Schema(), appsettings.Migrations(),
//	    settings.WithVersion(cmd.Version),
//	    settings.WithLogger(logger),
//	)
//	if err := store.Init(ctx); err != nil {
//	    return err
//	}
//
// Init must complete before anything reads the settings. It creates the
// file from the defaults, migrates an older or newer document to the
// current version, and replaces a corrupt one with the defaults.
//
// # Validation
//
// Every write is checked twice: against the typed schema (the value must
// decode into T, unknown keys are dropped) and, just before it reaches
// disk, against the loose schema (an object with a string version).
// A write that fails either check is logged at warn level and discarded,
// leaving the file as it was. Reads that fail the typed schema repair the
// file by resetting it.
//
// # Live references
//
// [Store.Ref] returns a [Handle] whose [Handle.Settings] is a [Ref]: a path
// into a shared snapshot of the document.
//
//	h, _ := store.Ref(ctx)
//	width := h.Settings().At("image.preview.resolution.width")
//	fmt.Println(width.Int())
//	ok, err := width.Set(ctx, 1600)
//
// Setting any field rebuilds the whole document and sends it through the
// same validated write path, so a nested assignment can never persist an
// invalid document.
package settings
