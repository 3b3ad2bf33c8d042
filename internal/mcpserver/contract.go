package mcpserver

// ContentFormatContract describes the layout and file format of course
// content, for LLM consumers that read or draft lessons.
const ContentFormatContract = `# Learn Clojure Content Format

## Layout

` + "```" + `
<content root>/
  <chapter>/
    readme.md        # chapter landing page, REQUIRED
    <part>.md        # one file per lesson part
` + "```" + `

- One directory level only. Files at the root or nested deeper are ignored.
- Identifiers are the directory name (chapter) and the file stem (part).
- A chapter without a readable ` + "`readme.md`" + ` is left out of the course.

## Header

Every file starts with a YAML header between ` + "`---`" + ` lines:

` + "```" + `markdown
---
title: Sequences       # REQUIRED, non-empty
sequence: 3            # REQUIRED, integer; orders chapters and parts
---

Body markdown.
` + "```" + `

Chapters are ordered by the sequence of their readme; parts by their own
sequence within the chapter. Equal sequences keep file name order.

## Code fences

- A fence is three backticks, an optional lowercase tag, the code, and three
  closing backticks.
- Code tagged ` + "`clojure`" + ` (or untagged) is runnable in the page REPL.
- Tag a block ` + "`clojurenoeval`" + ` to show Clojure that must not run (side effects,
  pseudo code). It is displayed as ` + "`clojure`" + `.
- Code is trimmed of surrounding whitespace. Everything between fences is
  rendered as markdown.
- A fence that is never closed is shown as plain text.
`
