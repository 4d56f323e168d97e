package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// seedContent scaffolds a starter content tree next to the configuration:
// a first post and an about page. Existing files are left alone unless
// force is set.
func seedContent(dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create content directory: %w", err)
	}

	today := time.Now().Format("2006-01-02")
	files := map[string]string{
		"first-post.md": fmt.Sprintf(`---
title: 'My First Post'
description: 'Hello from a brand new blog.'
pubDate: '%s'
---

# My First Post

Welcome! Edit this file, or add more Markdown files next to it, and run
the build again.
`, today),
		"about.md": `---
title: 'About'
description: 'Who writes this blog.'
---

# About

A few words about the author go here.
`,
	}

	for name, body := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !force {
			continue
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write seed file %s: %w", path, err)
		}
	}
	return nil
}
