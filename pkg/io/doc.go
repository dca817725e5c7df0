// Package io reads and writes the JSON files virtgrid works with.
//
// # Layout files
//
// A layout is a list of keyed boxes in canvas coordinates:
//
//	{
//	  "items": [
//	    {"key": "header", "x": 0,  "y": 0,  "width": 800, "height": 60},
//	    {"key": "card-1", "x": 20, "y": 80, "width": 240, "height": 160}
//	  ]
//	}
//
// Keys must be unique and boxes must have non-negative coordinates and
// dimensions. [ReadLayout] rejects anything else with an INVALID_LAYOUT
// error naming the offending item. [GridLayout] generates uniform grids
// for benchmarks and demos.
//
// # Snapshot files
//
// A snapshot is a precomputed bucket index for one layout:
//
//	{
//	  "canvas": {"width": 800, "height": 2460},
//	  "bucket_size": 800,
//	  "buckets": {"0-0": ["header", "card-1"], "0-3": ["footer"]}
//	}
//
// Feeding a snapshot's values back as precomputed canvas size, bucket size
// and buckets skips the build pass entirely. Bucket keys use the "x-y"
// form of [grid.BucketKey]; map keys are written sorted, so equal indexes
// encode to identical bytes.
package io
