// Package validator provides the issue model shared by the schema package
// and the CLI.
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: A single problem with the dotted path of the offending field.
//   - [Result]: Aggregates issues; [Result.Err] turns it into an error that
//     matches errors.ErrValidation.
//   - [Reporter]: Renders a Result as coloured text or JSON.
//
// # Basic Usage
//
//	result := &validator.Result{}
//	if _, ok := doc["version"].(string); !ok {
//		result.AddError("version", "expected string", doc["version"])
//	}
//	if err := result.Err(); err != nil {
//		return err
//	}
package validator
