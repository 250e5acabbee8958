package sources

// YouTube implementation is split across files by responsibility:
//   youtube_innertube.go   Innertube API types and the ANDROID /player call
//   youtube_watch.go       watch page fetch and ytInitialPlayerResponse extraction
//   youtube_timedtext.go   caption track selection and timedtext XML parsing
//   youtube_transcript.go  YouTubeClient request plumbing and the fetch pipeline
//   youtube_errors.go      failure classes shared with the transcript package
