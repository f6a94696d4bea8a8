// Package haven runs the domestic-violence resource query pipelines in-process.
//
// The caller supplies three capabilities: an Embedder for relevance scoring,
// a Searcher for web search and a Generator for intent classification and
// conversational fallback answers. Every answer carries the crisis hotline.
//
//	client, _ := haven.New(
//	    haven.WithEmbedder(emb),
//	    haven.WithSearcher(search),
//	    haven.WithGenerator(llm),
//	    haven.WithHotline("National Domestic Violence Hotline", "1-800-799-7233"),
//	)
//	resp, _ := client.Search(ctx, "shelters near Austin")
//	fmt.Println(resp.Text)
//
// Search applies the lower search-API confidence threshold (0.5 by default);
// Converse applies the conversational threshold (0.7) and renders results for
// reading aloud.
package haven
