// Package translator translates JSON documents field by field.
//
// A Translator walks a document tree, asks a classify.Classifier which
// string fields to translate, protects placeholders and tags with the
// tokenize package, calls a Provider, converts digits for languages with
// their own numerals and caches every result. Objects that look like
// entities get a URL slug derived from their translated name.
//
// Basic usage:
//
//	p := provider.NewOpenAIProvider(provider.OpenAIConfig{APIKey: key})
//	t := translator.New(p,
//	    translator.WithCache(cache.NewInMemoryCache()),
//	    translator.WithConcurrency(8),
//	)
//
//	doc, _ := document.Parse(data)
//	res, err := t.TranslateDocument(ctx, doc, "es", "acme")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Stats.Translated, res.Stats.Errors)
package translator
