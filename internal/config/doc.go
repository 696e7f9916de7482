// Package config holds the settings that decide how ustring tools obtain
// memory.
//
// Settings come from three sources, later ones overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← USTRING_*, highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML, may @include others
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Each source is a loader.Source that yields a map; the maps are deep-merged
// in order before being decoded into a Config. Only the allocator and growth
// sections are read from the environment, so other USTRING_* variables (such
// as USTRING_CONFIG) are left alone.
//
// # Settings
//
//	allocator.kind          heap | pool | limited   (default "heap")
//	allocator.limit_bytes   budget for "limited"    (default 64 MiB)
//	allocator.max_pooled    largest pooled region   (default 64 KiB)
//	growth.min_capacity     initial reservation     (default 0)
//
// # Basic Usage
//
//	cfg, err := config.Load("ustring.toml")
//	if err != nil {
//	    return err
//	}
//	a := cfg.NewAllocator()
//	s := ustring.WithCapacity(cfg.Growth.MinCapacity, a)
package config
