package cli

import (
	"lnct-quiz-console/internal/domain"
)

// builtinCatalog is the question bank used when no catalog source is configured.
func builtinCatalog() []domain.Category {
	return []domain.Category{
		{
			Name: "DSA",
			Questions: []domain.Question{
				{Prompt: "Which data structure is used for implementing recursion?", Options: []string{"Stack", "Queue", "Array", "Linked List"}, Correct: 0},
				{Prompt: "What is the time complexity of searching in a Hash Table?", Options: []string{"O(n)", "O(log n)", "O(1)", "O(n^2)"}, Correct: 2},
				{Prompt: "In a binary search tree, which traversal gives elements in sorted order?", Options: []string{"Preorder", "Inorder", "Postorder", "Level Order"}, Correct: 1},
				{Prompt: "The maximum number of edges in a graph with n vertices is:", Options: []string{"n(n-1)", "n(n-1)/2", "n^2", "n log n"}, Correct: 1},
				{Prompt: "Which sorting algorithm has the worst case time complexity of O(n^2)?", Options: []string{"Merge Sort", "Heap Sort", "Quick Sort", "Insertion Sort"}, Correct: 3},
			},
		},
		{
			Name: "DBMS",
			Questions: []domain.Question{
				{Prompt: "What does SQL stand for?", Options: []string{"Structured Query Language", "Standard Question Language", "Simple Query Logic", "Sequential Query Line"}, Correct: 0},
				{Prompt: "Which of the following is an example of DDL command?", Options: []string{"SELECT", "INSERT", "CREATE", "UPDATE"}, Correct: 2},
				{Prompt: "What is a tuple in a relational model?", Options: []string{"A column", "An attribute", "A row", "A key"}, Correct: 2},
				{Prompt: "The property that ensures data changes are permanent is called:", Options: []string{"Atomicity", "Consistency", "Isolation", "Durability"}, Correct: 3},
				{Prompt: "Which clause is used to filter records after aggregation in SQL?", Options: []string{"WHERE", "GROUP BY", "HAVING", "ORDER BY"}, Correct: 2},
			},
		},
		{
			Name: "PYTHON",
			Questions: []domain.Question{
				{Prompt: "Which keyword is used to define a function in Python?", Options: []string{"function", "def", "func", "define"}, Correct: 1},
				{Prompt: "What is the output of `type([])`?", Options: []string{"<class 'list'>", "<class 'array'>", "<class 'tuple'>", "<class 'dict'>"}, Correct: 0},
				{Prompt: "How do you comment out multiple lines in Python?", Options: []string{"// Comment", "# Comment", "/* Comment */", `"""Comment"""`}, Correct: 3},
				{Prompt: "Which built-in function is used to iterate over a sequence of numbers?", Options: []string{"range()", "sequence()", "list()", "loop()"}, Correct: 0},
				{Prompt: "What does `__init__` method do in Python classes?", Options: []string{"Initializes a class", "Initializes the object", "Deletes the object", "Creates a module"}, Correct: 1},
			},
		},
	}
}

// sampleStudent is seeded into an empty identity store so a fresh install can log in.
func sampleStudent() domain.Principal {
	return domain.Principal{
		RegistrationID: "LNCT000",
		Username:       "testuser",
		Password:       "password123",
		FullName:       "Aarav Sharma",
		DateOfBirth:    "01/01/2004",
		Phone:          "9876543210",
		Email:          "aarav.s@lnct.in",
		Program:        "B.Tech CSE",
		AcademicYear:   "3rd",
		Address:        "Bhopal, MP",
		GuardianName:   "Rajesh Sharma",
	}
}
