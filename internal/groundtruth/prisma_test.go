package groundtruth

import (
	"reflect"
	"testing"
)

const prismaFixture = `
datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}

model User {
  id        Int      @id @default(autoincrement())
  email     String   @unique
  name      String?
  posts     Post[]
  // soft-delete marker
  deletedAt DateTime?

  @@index([email])
}

model Post {
  id       Int    @id
  title    String
  author   User   @relation(fields: [authorId], references: [id])
  authorId Int
}

enum Role {
  USER
  ADMIN
}
`

func TestParsePrisma(t *testing.T) {
	s, ok := ParsePrisma(prismaFixture)
	if !ok {
		t.Fatal("ParsePrisma reported no models")
	}

	if !reflect.DeepEqual(s.ModelOrder, []string{"User", "Post"}) {
		t.Errorf("ModelOrder = %v, want declaration order", s.ModelOrder)
	}
	wantUser := []string{"id", "email", "name", "posts", "deletedAt"}
	if !reflect.DeepEqual(s.FieldOrder["User"], wantUser) {
		t.Errorf("FieldOrder[User] = %v, want %v", s.FieldOrder["User"], wantUser)
	}
	if !s.Models["User"]["email"] {
		t.Error("User.email not indexed")
	}
	if s.Models["User"]["@@index"] {
		t.Error("block attribute indexed as a field")
	}
	if !s.Models["Post"]["authorId"] {
		t.Error("Post.authorId not indexed")
	}
	if !s.Enums["Role"] {
		t.Error("enum Role not indexed")
	}
	if _, isModel := s.Models["Role"]; isModel {
		t.Error("enum indexed as a model")
	}
}

func TestParsePrisma_NoModels(t *testing.T) {
	if _, ok := ParsePrisma("generator client {\n  provider = \"prisma-client-js\"\n}\n"); ok {
		t.Error("ParsePrisma reported ok with no model blocks")
	}
}

func TestAccessor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"User", "user"},
		{"PostTag", "postTag"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Accessor(tt.in); got != tt.want {
			t.Errorf("Accessor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAccessorModels(t *testing.T) {
	s, ok := ParsePrisma(prismaFixture)
	if !ok {
		t.Fatal("fixture did not parse")
	}
	got := s.AccessorModels()
	if got["user"] != "User" || got["post"] != "Post" {
		t.Errorf("AccessorModels = %v", got)
	}
}

func TestFindPrismaSchema(t *testing.T) {
	root := t.TempDir()
	if got := FindPrismaSchema(root); got != "" {
		t.Errorf("FindPrismaSchema on empty dir = %q, want empty", got)
	}

	writeFile(t, root, "prisma/schema.prisma", prismaFixture)
	if got := FindPrismaSchema(root); got != "prisma/schema.prisma" {
		t.Errorf("FindPrismaSchema = %q, want prisma/schema.prisma", got)
	}
}

func TestParsePrismaFile_Missing(t *testing.T) {
	if _, ok := ParsePrismaFile(t.TempDir(), "schema.prisma"); ok {
		t.Error("ParsePrismaFile reported ok for a missing file")
	}
}
