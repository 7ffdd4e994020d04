package main

import "embed"

// assets holds the route table, templates, SQL migrations and static files.
//
//go:embed all:assets
var assets embed.FS
