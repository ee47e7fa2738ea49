/*
Package markov provides an in-memory, second-order Markov chain text
generator.

A Model interns token surfaces into a Vocabulary and records, for every pair
of preceding tokens, the list of tokens observed next. Generation is a random
walk over that table that ends at the End-Of-Chain token. Tokenization is
pluggable through the Tokenizer interface; DefaultTokenizer covers
space-delimited languages, and morphological analyzers can be adapted to it
for languages such as Japanese.

A typical program trains once and then generates:

	m, _ := markov.NewModel()
	_, err := m.TrainReader(ctx, corpus, tokenizer)
	text, err := m.Generate()
*/
package markov
