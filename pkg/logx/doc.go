// Package logx configures willdo's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//
// Components never log through a package-level logger; they receive a
// logx.Logger (usually derived with With()) from whoever constructed them.
package logx
