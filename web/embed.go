// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package web embeds the page templates of the single-page frontend shell.
package web

import "embed"

// Templates holds shell.html and loading.html.
//
//go:embed templates/*.html
var Templates embed.FS
