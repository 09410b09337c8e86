// Package chunker divides markdown documents into semantic chunks for
// embedding and retrieval.
//
// Chunks are created at heading boundaries to preserve the document's
// own structure. Each chunk carries a heading-path breadcrumb
// ("Guide > Installation > Linux") so a retrieval hit stays locatable
// in the original document.
//
// # Chunk Sizing
//
// Target token counts:
//   - Minimum: 50 tokens (tiny sections are merged into the predecessor)
//   - Maximum: 1000 tokens (oversized sections split at paragraphs)
//
// Token estimation uses a simple heuristic (chars/4).
//
// # Fenced Code Blocks
//
// Lines inside ``` or ~~~ fences are never treated as headings, so SDK
// code samples containing # comments do not fragment a section.
package chunker
