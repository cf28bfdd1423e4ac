// Package store mirrors downloaded model files to object storage.
//
// Buckets are addressed by gocloud URL (s3://, gs://, file://, mem://);
// drivers are registered by the importing binary. Each mirrored object
// records the file's SHA-256 as blob metadata so a later run can skip
// re-uploading an unchanged model.
//
// # Usage
//
//	st, err := store.Open(ctx, "s3://models-archive")
//	defer st.Close()
//
//	err = st.Mirror(ctx, "/models/detector.onnx", "detector.onnx", checksum)
package store
