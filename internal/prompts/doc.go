// Package prompts holds the instruction templates that ask a model for a
// standalone FreeCAD Python script.
//
// Template text lives in templates/*.md and is embedded at compile time.
// The files are plain markdown rather than Go string constants so the
// example scripts can be read, diffed, and edited without escaping. Each
// template carries exactly one [Slot] that [Template.Render] replaces with
// the caller's request, verbatim.
//
// Convention: one file per variant, named after the variant. Adding a
// variant means adding the file and listing it in [Variants].
package prompts
