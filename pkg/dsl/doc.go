/*
Package dsl provides a Go DSL for programmatically constructing condition trees and rule books.

It is an alternative to writing rules documents by hand, useful for tests,
generated rule sets and IDE autocompletion.

Example usage:

	book := dsl.New("pricing").
		Rule(dsl.All("member", dsl.Any("black-friday", dsl.Val("coupon"))), "discount-20").
		Rule(dsl.Leaf("member"), "free-shipping")

	report, err := rulebook.New().RunSources(ctx, book.Build(), memory.NewFactStore("member", "coupon"))
*/
package dsl
