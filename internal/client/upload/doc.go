// Package upload runs the movie upload saga: create the movie record,
// obtain a presigned storage target, PUT the file, register the video
// asset and wait for transcoding to pick it up.
//
// Progress is reported through an Observer and never decreases within one
// run. Storage that rejects the upload under its CORS rules is not fatal:
// the run is marked degraded, progress is simulated up to the end of the
// transfer window and the saga continues with the presigned blob URL.
package upload
