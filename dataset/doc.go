// Package dataset converts COCO-style datasets to and from the annotation
// store: schema normalization, coordinate rescaling, pose remapping, bulk
// load and export, and merging of edits made in the browser.
package dataset
