package goToken

import "testing"

func BenchmarkMintAccess(b *testing.B) {
	engine := newTestEngine(b, SystemClock{})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.MintAccess("u1"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyAccess(b *testing.B) {
	engine := newTestEngine(b, SystemClock{})
	token, err := engine.MintAccess("u1")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.VerifyAccess(token); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyAccessParallel(b *testing.B) {
	engine := newTestEngine(b, SystemClock{})
	token, err := engine.MintAccess("u1")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.VerifyAccess(token); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkRotate(b *testing.B) {
	engine := newTestEngine(b, SystemClock{})
	pair, err := engine.MintPair("u1")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := engine.Rotate(pair.RefreshToken); err != nil {
			b.Fatal(err)
		}
	}
}
