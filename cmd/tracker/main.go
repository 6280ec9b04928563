package main

func main() {
	initLogger()
	execute()
}
