// Package bundle regenerates the canonical distribution tree from the asset
// source directories. Every build is destructive and all-or-nothing: the
// tree is composed in a temporary sibling directory and renamed into place
// once complete, with bundle.json written last as the completeness marker.
package bundle
