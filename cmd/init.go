package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/livedocs/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init [directory]",
	Aliases: []string{"i"},
	Short:   "Scaffold a docs.yml, sample pages and a sample component",
	Long: `Create a starter documentation project: a docs.yml configuration, an
index page, a getting-started guide, a component page with live examples and
the Button component those examples use. Existing files are kept unless
--yes is given.

Examples:
  livedocs init                # Scaffold into the current directory
  livedocs init my-docs        # Scaffold into ./my-docs
  livedocs init --yes          # Overwrite existing files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("yes", "y", false, "overwrite existing files")
}

type scaffoldFile struct {
	path    string
	content string
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	overwrite, _ := cmd.Flags().GetBool("yes")

	cfg := config.Default()
	cfg.Docs.Title = "My Documentation"
	cfg.Build.Workers = 0
	data, err := cfg.ToYAML()
	if err != nil {
		return err
	}

	files := []scaffoldFile{
		{"docs.yml", configHeader + string(data)},
		{filepath.Join(cfg.Docs.Dir, "index.md"), indexTemplate},
		{filepath.Join(cfg.Docs.Dir, "getting-started.md"), gettingStartedTemplate},
		{filepath.Join(cfg.Docs.Dir, "components", "button.md"), buttonDocTemplate},
		{filepath.Join(cfg.Components.Dir, "Button.tsx"), buttonComponentTemplate},
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		path := filepath.Join(root, f.path)
		written, err := writeScaffold(path, f.content, overwrite)
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(out, "Created %s\n", path)
		} else {
			fmt.Fprintf(out, "Skipped %s (exists, use --yes to overwrite)\n", path)
		}
	}

	fmt.Fprintln(out, "Run 'livedocs dev' to start the development server.")
	return nil
}

func writeScaffold(path, content string, overwrite bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

const configHeader = `# livedocs configuration
# Every key can be overridden with LIVEDOCS_<SECTION>_<KEY>, e.g. LIVEDOCS_DOCS_OUTPUT.
# build.workers: 0 builds one page per CPU at a time.

`

const indexTemplate = `---
title: Welcome
order: 1
---

# Welcome to Your Documentation

This site is built by **livedocs** from the Markdown files in ` + "`docs/`" + `.

## Getting Started

Read the [Getting Started](getting-started/) guide to learn how pages and live
examples work.

## Components

Browse the [Button](components/button/) page to see live previews.
`

const gettingStartedTemplate = `---
title: Getting Started
order: 2
---

# Getting Started

## Project Structure

` + "```" + `
your-project/
├── docs/              # Documentation pages
│   ├── index.md
│   └── components/
├── components/        # Your components
└── docs.yml           # Configuration
` + "```" + `

## Writing Pages

Each page may start with frontmatter:

` + "```md" + `
---
title: Page Title
order: 1
---
` + "```" + `

## Live Examples

Add ` + "`live`" + ` after the language of a fenced block to render it as a preview:

` + "```tsx live" + `
<Button variant="primary">Click me</Button>
` + "```" + `

## Commands

- ` + "`livedocs dev`" + ` serves the site and reloads on change.
- ` + "`livedocs build`" + ` writes the static site to ` + "`dist/`" + `.
- ` + "`livedocs serve`" + ` previews the built site.
`

const buttonDocTemplate = `---
title: Button
component: Button
order: 1
---

# Button

A clickable button.

## Variants

` + "```tsx live" + `
<Button variant="primary">Primary</Button>
` + "```" + `

` + "```tsx live" + `
<Button variant="secondary">Secondary</Button>
` + "```" + `

## Sizes

` + "```tsx live" + `
<Button size="sm">Small</Button>
` + "```" + `

` + "```tsx live" + `
<Button size="lg">Large</Button>
` + "```" + `

## States

` + "```tsx live" + `
<Button disabled>Disabled</Button>
` + "```" + `
`

const buttonComponentTemplate = `import * as React from 'react';

interface ButtonProps extends React.ButtonHTMLAttributes<HTMLButtonElement> {
  variant?: 'primary' | 'secondary' | 'ghost';
  size?: 'sm' | 'md' | 'lg';
  loading?: boolean;
}

const variantClasses = {
  primary: 'bg-blue-600 text-white hover:bg-blue-700',
  secondary: 'bg-gray-100 text-gray-900 hover:bg-gray-200',
  ghost: 'bg-transparent text-gray-700 hover:bg-gray-100',
};

const sizeClasses = {
  sm: 'h-8 px-3 text-sm',
  md: 'h-10 px-4 text-base',
  lg: 'h-12 px-6 text-lg',
};

export function Button({ variant = 'primary', size = 'md', loading, disabled, className, ...props }: ButtonProps) {
  return (
    <button
      className={cn(
        'inline-flex items-center justify-center rounded-md font-medium transition-colors',
        variantClasses[variant],
        sizeClasses[size],
        (disabled || loading) && 'opacity-50 cursor-not-allowed',
        className,
      )}
      disabled={disabled || loading}
      {...props}
    />
  );
}
`
