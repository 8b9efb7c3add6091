package cyclic_test

import (
	"fmt"

	"gregoryjjb/ringtool/cyclic"
)

func ExampleFromSlice() {
	l := cyclic.FromSlice([]int{0, 1, 2, 3, 4, 5})
	cur, _ := l.Current()
	left, _ := l.Left()
	right, _ := l.Right()
	fmt.Println(left, cur, right)

	l.MoveRightN(2)
	fmt.Println(l)
	// Output:
	// 5 0 1
	// [2 3 4 5 0 1]
}

func ExampleList_PopMoveRight() {
	l := cyclic.FromSlice([]string{"a", "b", "c"})
	for v, ok := l.PopMoveRight(); ok; v, ok = l.PopMoveRight() {
		fmt.Print(v, " ")
	}
	fmt.Println(l.Len())
	// Output: a b c 0
}

func ExampleList_PushMoveRight() {
	l := cyclic.New[int]()
	l.PushMoveRight(42)
	l.PushMoveRight(43)
	fmt.Println(l, l.Len())
	// Output: [43 42] 2
}
