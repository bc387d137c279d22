// Package pipeline describes renditions and carries configured transcode
// commands across process boundaries.
//
// A Spec names one desired rendition: a Transform applied to an ffmpeg
// command, the output file extension and the bounding box the output must
// fit in. A Spec's identity digest decides its output file name, so two
// textually different transforms always produce different files even if
// they would encode identically.
//
// Serialize flattens a configured ffmpeg.Command into a Descriptor, a JSON
// safe value holding inputs, a single targeted output, global options and
// complex filter entries. Deserialize rebuilds an equivalent command bound
// to a fresh logger. For any command with exactly one targeted output,
// Deserialize(Serialize(c)).Arguments() equals c.Arguments().
package pipeline
