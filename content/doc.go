// Package content generates, post-processes, and validates social
// media content.
//
// The pipeline is prompt, completion, cleanup: [BuildPrompt] renders a
// platform-specific template, [Generator.Generate] runs it through an
// LLM provider, and [PostProcess] turns the completion into postable
// text. JSON envelopes are unwrapped, markdown and HTML are stripped,
// and over-limit text is truncated at a word boundary with the
// trailing hashtags kept. Per-platform limits and posting conventions
// live in [PlatformSpec]; [Validate] runs the pre-publish quality
// checks. A provider failure degrades to deterministic fallback
// content instead of failing the request.
package content
