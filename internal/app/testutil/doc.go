// Package testutil holds test doubles shared by the pipeline packages:
//
//   - MockEngine: testify mock of api.Engine
//   - TrackingIterator: a segment stream that records how it was drained
//   - CodecRunner: fake ffmpeg/ffprobe for audio.Normalizer
//   - FakeBinary, CreateTempFile: filesystem fixtures for tests that exec tools
package testutil
