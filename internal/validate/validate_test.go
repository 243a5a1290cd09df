package validate

import "testing"

func TestBucketName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"ab", false},
		{"abc", true},
		{"my-bucket.example", true},
		{"My-Bucket", false},
		{"-leading-hyphen", false},
		{"trailing-hyphen-", false},
		{"has..doubledot", false},
		{"192.168.1.1", false},
		{"a.b.c", true},
		{"a..b", false},
		{".leadingdot", false},
		{"xn--bucket", true},
	}
	for _, c := range cases {
		if got := BucketName(c.name); got != c.want {
			t.Errorf("BucketName(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestBucketNameLength(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	if BucketName(string(long)) {
		t.Fatalf("expected 64-char name to be rejected")
	}
}

func TestKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"plain.txt", true},
		{"dir/nested/key", true},
		{"../escape", false},
		{"dir/../escape", false},
		{"", false},
		{"..", false},
		{"key..with.dots", true},
	}
	for _, c := range cases {
		if got := Key(c.key); got != c.want {
			t.Errorf("Key(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestCopySource(t *testing.T) {
	bucket, key, ok := CopySource("/src-bucket/some/key.txt")
	if !ok || bucket != "src-bucket" || key != "some/key.txt" {
		t.Fatalf("got bucket=%q key=%q ok=%v", bucket, key, ok)
	}

	bucket, key, ok = CopySource("src-bucket/key%20with%20space")
	if !ok || bucket != "src-bucket" || key != "key with space" {
		t.Fatalf("got bucket=%q key=%q ok=%v", bucket, key, ok)
	}

	if _, _, ok := CopySource("no-slash-bucket"); ok {
		t.Fatalf("expected ok=false for missing separator")
	}

	if _, _, ok := CopySource("/bucket/../escape"); ok {
		t.Fatalf("expected ok=false for traversal after decode")
	}
}
