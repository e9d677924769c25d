// Package jobsearch embeds the job search engine in a Go program without the HTTP server.
//
// The client talks to the same Postgres job store the server uses. A Redis cache and an
// embedding provider are optional; without an embedder the semantic layer is skipped.
//
//	client, _ := jobsearch.New(ctx,
//	    jobsearch.WithPostgres("postgres://localhost:5432/jobs"),
//	    jobsearch.WithRedis("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, "senior swe", jobsearch.SearchOptions{RemoteOnly: true})
//	for _, j := range res.Jobs {
//	    fmt.Println(j.Title, j.Company, j.WhyMatched)
//	}
//
//	sug, _ := client.Suggest(ctx, "eng", jobsearch.SuggestTitles, 5)
package jobsearch
