// Package catalog provides the seed tables sessions start from.
//
// A catalog comes from one of three sources: the built-in Default table, a
// single YAML or JSON file (FileLoader), or a directory of item documents
// read through loam (see pkg/adapters/loam). All sources share the Item
// shape and its lenient number decoding.
package catalog
