// Package seqsearch runs BLAST+ similarity searches from Go and turns their
// reports into structured, cross-referenced results.
//
// The client spawns the BLAST+ executables directly (never through a shell),
// parses the pairwise HTML report, and links every hit back to a retrieval
// endpoint or to a reference produced by a caller-supplied builder.
//
//	client, err := seqsearch.New(ctx,
//	    seqsearch.WithBinaryDir("/opt/blast/bin"),
//	    seqsearch.WithCorpus("nt", "/data/blast/nt", "Nucleotide collection", seqsearch.Nucleotide),
//	)
//	res, err := client.Search(ctx, seqsearch.SearchRequest{
//	    Sequence: ">q1\nACGTACGTACGT",
//	    Corpora:  []string{"nt"},
//	})
//	for _, q := range res.Queries {
//	    for _, h := range q.Hits {
//	        fmt.Println(h.Fragment)
//	    }
//	}
//
// Errors are classified: errors.Is(err, ErrInvalidRequest) for input rejected
// before spawning, ErrInvalidArgument when the executable refused the command,
// ErrSearchFailed for crashes. *SearchError carries the detail.
package seqsearch
